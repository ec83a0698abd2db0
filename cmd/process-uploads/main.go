package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"

	"logistics/internal/accounts"
	"logistics/internal/notifications"
	"logistics/internal/pipeline"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

var (
	processor *pipeline.Processor
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

	accountID, err := accounts.GetAccountID(context.Background(), awsConfig)
	if err != nil {
		// Account context only decorates notifications, keep going without it.
		log.Printf("Unable to resolve AWS account ID: %v", err)
	}

	mailer := notifications.ReceiptMailer{
		Client: sesv2.NewFromConfig(awsConfig),
		Sender: strings.TrimSpace(os.Getenv("SES_SENDER")),
	}

	processor = pipeline.New(
		s3.NewFromConfig(awsConfig),
		dynamodb.NewFromConfig(awsConfig),
		sns.NewFromConfig(awsConfig),
		mailer,
		cloudwatch.NewFromConfig(awsConfig),
		pipeline.Config{
			Table:   os.Getenv("DYNAMODB_SHIPMENTS_TABLE"),
			Topic:   os.Getenv("SNS_TOPIC_ARN"),
			Account: accountID,
			Stack:   os.Getenv("STACK_NAME"),
		},
	)
}

func handler(ctx context.Context, event json.RawMessage) (events.SQSEventResponse, error) {
	var sqsEvent events.SQSEvent
	if err := json.Unmarshal(event, &sqsEvent); err != nil {
		log.Printf("Failed to parse SQS event: %v", err)
		return events.SQSEventResponse{}, nil
	}

	processor.Run(ctx, sqsEvent)

	// No batch item failures: duplicates on redelivery are handled by the
	// conditional write, and failed messages are logged rather than retried.
	return events.SQSEventResponse{}, nil
}

func main() {
	lambda.Start(handler)
}
