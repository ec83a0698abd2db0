package events

import (
	"encoding/json"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

// objectDescriptor is the S3 object reference carried by an upload
// notification body.
type objectDescriptor struct {
	Bucket struct {
		Name string `json:"name"`
	} `json:"bucket"`
	Object struct {
		Key string `json:"key"`
	} `json:"object"`
}

// uploadEnvelope accepts both notification shapes: an EventBridge envelope
// with the descriptor nested under "detail", or the bare descriptor itself.
type uploadEnvelope struct {
	Detail *objectDescriptor `json:"detail"`
	objectDescriptor
}

// UploadRecord is one decoded upload notification. Key is percent-decoded.
type UploadRecord struct {
	MessageID string
	Bucket    string
	Key       string
}

// DecodeFailure pairs a message that could not be decoded with its cause so
// the caller can log it; a bad record never aborts its siblings.
type DecodeFailure struct {
	MessageID string
	Err       error
}

// DecodeUploadRecord decodes a single SQS message body into an UploadRecord.
func DecodeUploadRecord(messageID, body string) (UploadRecord, error) {
	var envelope uploadEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return UploadRecord{}, ErrorEventNotDecodable(err)
	}

	descriptor := envelope.objectDescriptor
	if envelope.Detail != nil {
		descriptor = *envelope.Detail
	}

	if descriptor.Bucket.Name == "" || descriptor.Object.Key == "" {
		return UploadRecord{}, ErrorMissingObjectInfo()
	}

	key, err := url.QueryUnescape(descriptor.Object.Key)
	if err != nil {
		return UploadRecord{}, ErrorKeyNotDecodable(descriptor.Object.Key, err)
	}

	return UploadRecord{
		MessageID: messageID,
		Bucket:    descriptor.Bucket.Name,
		Key:       key,
	}, nil
}

// SQSEventWrapper wraps an SQSEvent
type SQSEventWrapper struct {
	Event *events.SQSEvent
}

// UnwrapUploadRecords decodes every record in the batch, collecting decode
// failures separately instead of aborting.
func (w *SQSEventWrapper) UnwrapUploadRecords() ([]UploadRecord, []DecodeFailure) {
	var records []UploadRecord
	var failures []DecodeFailure

	for _, record := range w.Event.Records {
		decoded, err := DecodeUploadRecord(record.MessageId, record.Body)
		if err != nil {
			failures = append(failures, DecodeFailure{MessageID: record.MessageId, Err: err})
			continue
		}
		records = append(records, decoded)
	}

	return records, failures
}
