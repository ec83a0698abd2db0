package notifications

import (
	"bytes"
	"context"
	"log"
	"text/template"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// SNSNotification represents an abstraction for a notification to be published via AWS SNS.
type SNSNotification interface {
	Message() (string, error)
	Subject() string
	TopicArn() string
}

// SNSPublishAPI defines the SNS operation required to publish a notification
type SNSPublishAPI interface {
	Publish(ctx context.Context, input *sns.PublishInput, opts ...func(*sns.Options)) (*sns.PublishOutput, error)
}

var uploadProcessedTemplate = template.Must(template.New("upload-processed").Parse(
	`File {{.ObjectKey}} processed for {{.TenantID}}. Rows: {{.RowsWritten}}

Account: {{.Account}}
Stack: {{.Stack}}
`))

var uploadFailedTemplate = template.Must(template.New("upload-failed").Parse(
	`File {{.ObjectKey}} processing failed for {{.TenantID}}. Error: {{.Cause}}

Account: {{.Account}}
Stack: {{.Stack}}
`))

// UploadProcessedNotification is the operations broadcast sent after row
// processing completes, whether zero, some or all rows were written.
type UploadProcessedNotification struct {
	Account     string
	Stack       string
	ObjectKey   string
	TenantID    string
	RowsWritten int
	Topic       string
}

func (n UploadProcessedNotification) Message() (string, error) {
	var buf bytes.Buffer
	if err := uploadProcessedTemplate.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n UploadProcessedNotification) Subject() string {
	return "New Upload Processed"
}

func (n UploadProcessedNotification) TopicArn() string {
	return n.Topic
}

// UploadFailedNotification is the operations broadcast sent when the uploaded
// file could not be processed at all. It carries the technical cause; the
// uploader only ever sees the generic receipt text.
type UploadFailedNotification struct {
	Account   string
	Stack     string
	ObjectKey string
	TenantID  string
	Cause     string
	Topic     string
}

func (n UploadFailedNotification) Message() (string, error) {
	var buf bytes.Buffer
	if err := uploadFailedTemplate.Execute(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (n UploadFailedNotification) Subject() string {
	return "Upload Processing Failed"
}

func (n UploadFailedNotification) TopicArn() string {
	return n.Topic
}

// Publish sends a notification to its SNS topic.
func Publish(ctx context.Context, client SNSPublishAPI, notification SNSNotification) error {
	message, err := notification.Message()
	if err != nil {
		return err
	}

	result, err := client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(notification.TopicArn()),
		Subject:  aws.String(notification.Subject()),
		Message:  aws.String(message),
	})
	if err != nil {
		return err
	}

	log.Printf("Notification sent successfully: %s", aws.ToString(result.MessageId))
	return nil
}
