package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ShipmentRecord is one persisted manifest row. Every field is stored as
// text to tolerate heterogeneous source formatting; records are written once
// and never updated by the pipeline.
type ShipmentRecord struct {
	CompanyID            string `dynamodbav:"CompanyID" json:"CompanyID"`
	ShipmentID           string `dynamodbav:"ShipmentID" json:"ShipmentID"`
	OrderID              string `dynamodbav:"OrderID" json:"OrderID"`
	Origin               string `dynamodbav:"Origin" json:"Origin"`
	Destination          string `dynamodbav:"Destination" json:"Destination"`
	WeightKg             string `dynamodbav:"Weight_kg" json:"Weight_kg"`
	DispatchDate         string `dynamodbav:"DispatchDate" json:"DispatchDate"`
	ExpectedDeliveryDate string `dynamodbav:"ExpectedDeliveryDate" json:"ExpectedDeliveryDate"`
	ActualDeliveryDate   string `dynamodbav:"ActualDeliveryDate" json:"ActualDeliveryDate"`
	SourceFile           string `dynamodbav:"SourceFile" json:"SourceFile"`
}

// NewShipmentID builds the shipment identifier from a microsecond-resolution
// UTC timestamp, the upload ID and the 1-based row index. The wall-clock
// component makes the ID unique per attempt, not per logical row.
func NewShipmentID(now time.Time, uploadID string, rowIndex int) string {
	utc := now.UTC()
	timestamp := fmt.Sprintf("%s%06dZ", utc.Format("20060102T150405"), utc.Nanosecond()/1000)
	return fmt.Sprintf("%s-%s-%d", timestamp, uploadID, rowIndex)
}

// NewShipmentRecord assembles a record from one parsed row. Unknown headers
// are ignored; missing headers leave their fields empty.
func NewShipmentRecord(tenantID, shipmentID, sourceKey string, fields map[string]string) ShipmentRecord {
	return ShipmentRecord{
		CompanyID:            tenantID,
		ShipmentID:           shipmentID,
		OrderID:              fields["OrderID"],
		Origin:               fields["Origin"],
		Destination:          fields["Destination"],
		WeightKg:             fields["Weight_kg"],
		DispatchDate:         fields["DispatchDate"],
		ExpectedDeliveryDate: fields["ExpectedDeliveryDate"],
		ActualDeliveryDate:   fields["ActualDeliveryDate"],
		SourceFile:           sourceKey,
	}
}

// PutItemAPI defines the DynamoDB operation required to write a shipment
type PutItemAPI interface {
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// ReadAPI defines the DynamoDB operations required to list shipments
type ReadAPI interface {
	Query(ctx context.Context, input *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, input *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// PutShipmentIfAbsent persists the record only if no record with the same
// ShipmentID exists. The conditional write is the sole concurrency control;
// a conflict means the row was already written by an earlier delivery.
func PutShipmentIfAbsent(ctx context.Context, client PutItemAPI, table string, record ShipmentRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return ErrorMarshallingShipment(record.ShipmentID, err)
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(ShipmentID)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrorShipmentExists(record.ShipmentID)
		}
		return ErrorShipmentNotWritten(record.ShipmentID, err)
	}

	return nil
}

// QueryShipmentsByTenant returns every shipment for one tenant, following
// pagination to the end.
func QueryShipmentsByTenant(ctx context.Context, client ReadAPI, table, tenantID string) ([]ShipmentRecord, error) {
	var records []ShipmentRecord
	var startKey map[string]types.AttributeValue

	for {
		result, err := client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(table),
			KeyConditionExpression: aws.String("CompanyID = :company"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":company": &types.AttributeValueMemberS{Value: tenantID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, ErrorQueryingShipments(tenantID, err)
		}

		var page []ShipmentRecord
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, ErrorUnmarshallingShipments(err)
		}
		records = append(records, page...)

		startKey = result.LastEvaluatedKey
		if startKey == nil {
			return records, nil
		}
	}
}

// ScanShipments returns every shipment across all tenants, following
// pagination to the end.
func ScanShipments(ctx context.Context, client ReadAPI, table string) ([]ShipmentRecord, error) {
	var records []ShipmentRecord
	var startKey map[string]types.AttributeValue

	for {
		result, err := client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, ErrorScanningShipments(err)
		}

		var page []ShipmentRecord
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, ErrorUnmarshallingShipments(err)
		}
		records = append(records, page...)

		startKey = result.LastEvaluatedKey
		if startKey == nil {
			return records, nil
		}
	}
}
