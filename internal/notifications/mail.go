package notifications

import (
	"context"
	"fmt"
	"log"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const (
	ReceiptSubjectProcessed = "Your file was processed"
	ReceiptSubjectFailed    = "Your file could not be processed"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// ValidEmailAddress reports whether addr looks like a deliverable address:
// local part, "@", domain with a TLD of at least two letters.
func ValidEmailAddress(addr string) bool {
	return emailPattern.MatchString(addr)
}

// SESSendAPI defines the SES operation required to send a receipt mail
type SESSendAPI interface {
	SendEmail(ctx context.Context, input *sesv2.SendEmailInput, opts ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// ReceiptMailer sends plain-text mail to uploaders. Both the success receipt
// and the failure notice go through Send so recipient validation is identical
// on either path.
type ReceiptMailer struct {
	Client SESSendAPI
	Sender string
}

// Send delivers a message to addr and reports whether it was handed to SES.
// An invalid address is skipped with a warning, not an error; a send failure
// is logged and swallowed. Receipts never block the pipeline.
func (m ReceiptMailer) Send(ctx context.Context, addr, subject, body string) bool {
	if !ValidEmailAddress(addr) {
		log.Printf("Skipping receipt mail, invalid address: %s", addr)
		return false
	}

	_, err := m.Client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.Sender),
		Destination: &types.Destination{
			ToAddresses: []string{addr},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
	})
	if err != nil {
		log.Printf("Failed to send receipt mail to %s: %v", addr, err)
		return false
	}

	log.Printf("Receipt mail sent to %s", addr)
	return true
}

// ProcessedReceiptBody is the uploader-facing text for a processed file.
func ProcessedReceiptBody(filename string, rowsWritten int) string {
	return fmt.Sprintf("We processed %s. Records imported: %d", filename, rowsWritten)
}

// FailedReceiptBody is the uploader-facing text for a file that could not be
// processed. Deliberately generic; the technical cause goes to operations.
func FailedReceiptBody(filename string) string {
	return fmt.Sprintf(
		"We encountered an issue processing your file %s. "+
			"The file format may be incorrect or the file may be corrupted. "+
			"Please check your file and try uploading again.", filename)
}
