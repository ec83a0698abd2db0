package events

import (
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

const sampleEventBridgeBody = `{
    "detail-type": "Object Created",
    "source": "aws.s3",
    "detail": {
        "bucket": {
            "name": "example-bucket"
        },
        "object": {
            "key": "acme/jane%40x.com/manifest.xlsx"
        }
    }
}`

const sampleDirectBody = `{
    "bucket": {
        "name": "example-bucket"
    },
    "object": {
        "key": "acme/jane%40x.com/manifest.xlsx"
    }
}`

func TestDecodeUploadRecord(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		bucket string
		key    string
	}{
		{
			name:   "eventbridge envelope",
			body:   sampleEventBridgeBody,
			bucket: "example-bucket",
			key:    "acme/jane@x.com/manifest.xlsx",
		},
		{
			name:   "direct descriptor",
			body:   sampleDirectBody,
			bucket: "example-bucket",
			key:    "acme/jane@x.com/manifest.xlsx",
		},
		{
			name:   "plus decodes to space",
			body:   `{"bucket":{"name":"b"},"object":{"key":"acme/jane%40x.com/weekly+manifest.xlsx"}}`,
			bucket: "b",
			key:    "acme/jane@x.com/weekly manifest.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := DecodeUploadRecord("msg-1", tt.body)
			if err != nil {
				t.Fatalf("DecodeUploadRecord returned error: %v", err)
			}

			if record.Bucket != tt.bucket {
				t.Errorf("Bucket = %q, want %q", record.Bucket, tt.bucket)
			}
			if record.Key != tt.key {
				t.Errorf("Key = %q, want %q", record.Key, tt.key)
			}
			if record.MessageID != "msg-1" {
				t.Errorf("MessageID = %q, want %q", record.MessageID, "msg-1")
			}
		})
	}
}

func TestDecodeUploadRecordFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "not json",
			body: "not json at all",
			want: ErrEventNotDecodable,
		},
		{
			name: "missing object key",
			body: `{"bucket":{"name":"b"},"object":{}}`,
			want: ErrMissingObjectInfo,
		},
		{
			name: "missing bucket name",
			body: `{"detail":{"object":{"key":"a/b/c.xlsx"}}}`,
			want: ErrMissingObjectInfo,
		},
		{
			name: "undecodable key",
			body: `{"bucket":{"name":"b"},"object":{"key":"acme%zz/x/y.xlsx"}}`,
			want: ErrKeyNotDecodable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeUploadRecord("msg-1", tt.body)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUnwrapUploadRecordsIsolatesFailures(t *testing.T) {
	event := events.SQSEvent{
		Records: []events.SQSMessage{
			{MessageId: "good-1", Body: sampleEventBridgeBody},
			{MessageId: "bad", Body: "not json"},
			{MessageId: "good-2", Body: sampleDirectBody},
		},
	}

	wrapper := SQSEventWrapper{Event: &event}
	records, failures := wrapper.UnwrapUploadRecords()

	if len(records) != 2 {
		t.Fatalf("expected 2 decoded records, got %d", len(records))
	}
	if records[0].MessageID != "good-1" || records[1].MessageID != "good-2" {
		t.Errorf("unexpected record order: %q, %q", records[0].MessageID, records[1].MessageID)
	}

	if len(failures) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(failures))
	}
	if failures[0].MessageID != "bad" {
		t.Errorf("failure MessageID = %q, want %q", failures[0].MessageID, "bad")
	}
	if !errors.Is(failures[0].Err, ErrEventNotDecodable) {
		t.Errorf("failure Err = %v, want ErrEventNotDecodable", failures[0].Err)
	}
}
