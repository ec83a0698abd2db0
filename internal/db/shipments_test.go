package db

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutClient struct {
	inputs []*dynamodb.PutItemInput
	err    error
}

func (f *fakePutClient) PutItem(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.inputs = append(f.inputs, input)
	if f.err != nil {
		return nil, f.err
	}
	return &dynamodb.PutItemOutput{}, nil
}

type fakeReadClient struct {
	queryPages []*dynamodb.QueryOutput
	scanPages  []*dynamodb.ScanOutput
	err        error
}

func (f *fakeReadClient) Query(_ context.Context, _ *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.queryPages[0]
	f.queryPages = f.queryPages[1:]
	return page, nil
}

func (f *fakeReadClient) Scan(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := f.scanPages[0]
	f.scanPages = f.scanPages[1:]
	return page, nil
}

func TestNewShipmentID(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 15, 42, 123456789, time.UTC)

	id := NewShipmentID(now, "manifest", 7)

	assert.Equal(t, "20260828T091542123456Z-manifest-7", id)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}T\d{6}\d{6}Z-manifest-7$`), id)
}

func TestNewShipmentIDUsesUTC(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 8, 28, 11, 0, 0, 0, zone)

	id := NewShipmentID(now, "m", 1)

	assert.Equal(t, "20260828T090000000000Z-m-1", id)
}

func TestNewShipmentRecord(t *testing.T) {
	record := NewShipmentRecord("acme", "id-1", "acme/jane@x.com/manifest.xlsx", map[string]string{
		"OrderID":      "A-1",
		"Origin":       "AMS",
		"Destination":  "LHR",
		"Weight_kg":    "12.5",
		"DispatchDate": "2026-08-20",
		"Unknown":      "ignored",
	})

	assert.Equal(t, "acme", record.CompanyID)
	assert.Equal(t, "id-1", record.ShipmentID)
	assert.Equal(t, "A-1", record.OrderID)
	assert.Equal(t, "AMS", record.Origin)
	assert.Equal(t, "LHR", record.Destination)
	assert.Equal(t, "12.5", record.WeightKg)
	assert.Equal(t, "2026-08-20", record.DispatchDate)
	assert.Equal(t, "", record.ExpectedDeliveryDate)
	assert.Equal(t, "", record.ActualDeliveryDate)
	assert.Equal(t, "acme/jane@x.com/manifest.xlsx", record.SourceFile)
}

func TestPutShipmentIfAbsent(t *testing.T) {
	client := &fakePutClient{}
	record := NewShipmentRecord("acme", "id-1", "key", map[string]string{"OrderID": "A-1"})

	err := PutShipmentIfAbsent(context.Background(), client, "Shipments", record)
	require.NoError(t, err)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, "Shipments", aws.ToString(input.TableName))
	assert.Equal(t, "attribute_not_exists(ShipmentID)", aws.ToString(input.ConditionExpression))

	id, ok := input.Item["ShipmentID"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "id-1", id.Value)

	weight, ok := input.Item["Weight_kg"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "", weight.Value)
}

func TestPutShipmentIfAbsentClassifiesConflict(t *testing.T) {
	client := &fakePutClient{err: &types.ConditionalCheckFailedException{Message: aws.String("exists")}}
	record := NewShipmentRecord("acme", "id-1", "key", nil)

	err := PutShipmentIfAbsent(context.Background(), client, "Shipments", record)

	assert.ErrorIs(t, err, ErrShipmentExists)
	assert.NotErrorIs(t, err, ErrShipmentNotWritten)
}

func TestPutShipmentIfAbsentWrapsOtherFailures(t *testing.T) {
	client := &fakePutClient{err: errors.New("throttled")}
	record := NewShipmentRecord("acme", "id-1", "key", nil)

	err := PutShipmentIfAbsent(context.Background(), client, "Shipments", record)

	assert.ErrorIs(t, err, ErrShipmentNotWritten)
	assert.NotErrorIs(t, err, ErrShipmentExists)
}

func shipmentItem(shipmentID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"CompanyID":  &types.AttributeValueMemberS{Value: "acme"},
		"ShipmentID": &types.AttributeValueMemberS{Value: shipmentID},
		"OrderID":    &types.AttributeValueMemberS{Value: "A-1"},
	}
}

func TestQueryShipmentsByTenantFollowsPagination(t *testing.T) {
	client := &fakeReadClient{
		queryPages: []*dynamodb.QueryOutput{
			{
				Items: []map[string]types.AttributeValue{shipmentItem("id-1")},
				LastEvaluatedKey: map[string]types.AttributeValue{
					"ShipmentID": &types.AttributeValueMemberS{Value: "id-1"},
				},
			},
			{
				Items: []map[string]types.AttributeValue{shipmentItem("id-2")},
			},
		},
	}

	records, err := QueryShipmentsByTenant(context.Background(), client, "Shipments", "acme")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "id-1", records[0].ShipmentID)
	assert.Equal(t, "id-2", records[1].ShipmentID)
	assert.Equal(t, "acme", records[0].CompanyID)
}

func TestScanShipmentsWrapsFailure(t *testing.T) {
	client := &fakeReadClient{err: errors.New("boom")}

	_, err := ScanShipments(context.Background(), client, "Shipments")

	assert.ErrorIs(t, err, ErrScanningShipments)
}
