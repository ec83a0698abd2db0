package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"

	"logistics/internal/db"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// AdminGroup is the credential group required to list shipments.
const AdminGroup = "Admin"

var (
	corsOrigin     string
	shipmentsStore db.ReadAPI
	shipmentsTable string
)

func init() {
	awsConfig, err := config.LoadDefaultConfig(context.Background(),
		config.WithRetryer(func() aws.Retryer {
			return retry.AddWithMaxAttempts(
				retry.NewStandard(), 5)
		}),
	)
	if err != nil {
		log.Fatalf("Unable to load AWS config: %v", err)
	}

	corsOrigin = os.Getenv("CORS_ALLOWED_ORIGIN")
	if corsOrigin == "" {
		corsOrigin = "http://localhost:3000"
	}
	shipmentsStore = dynamodb.NewFromConfig(awsConfig)
	shipmentsTable = os.Getenv("DYNAMODB_SHIPMENTS_TABLE")
}

func handler(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if !isAuthorized(request) {
		log.Printf("Access denied: caller not in %s group", AdminGroup)
		return response(403, map[string]string{
			"message": "Access denied: Admin privileges required",
		}), nil
	}

	tenantID := request.QueryStringParameters["companyId"]

	var records []db.ShipmentRecord
	var err error
	if tenantID != "" {
		log.Printf("Querying shipments for tenant: %s", tenantID)
		records, err = db.QueryShipmentsByTenant(ctx, shipmentsStore, shipmentsTable, tenantID)
	} else {
		log.Printf("Scanning all shipments")
		records, err = db.ScanShipments(ctx, shipmentsStore, shipmentsTable)
	}
	if err != nil {
		log.Printf("Failed to list shipments: %v", err)
		return response(500, map[string]string{"message": "Server error"}), nil
	}

	log.Printf("Found %d shipments", len(records))
	if records == nil {
		records = []db.ShipmentRecord{}
	}

	return response(200, map[string]any{"shipments": records}), nil
}

// isAuthorized checks the caller's claims for membership in the admin group.
// Authorization is explicit here: no claim, no access.
func isAuthorized(request events.APIGatewayProxyRequest) bool {
	claims, ok := request.RequestContext.Authorizer["claims"].(map[string]any)
	if !ok {
		return false
	}

	groups, _ := claims["cognito:groups"].(string)
	return strings.Contains(groups, AdminGroup)
}

func response(status int, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal response body: %v", err)
		status = 500
		body = []byte(`{"message":"Server error"}`)
	}

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Access-Control-Allow-Origin":  corsOrigin,
			"Access-Control-Allow-Headers": "Content-Type,Authorization",
			"Access-Control-Allow-Methods": "GET,OPTIONS",
		},
		Body: string(body),
	}
}

func main() {
	lambda.Start(handler)
}
