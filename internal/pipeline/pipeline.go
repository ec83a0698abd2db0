package pipeline

import (
	"context"
	"errors"
	"log"
	"runtime/debug"
	"time"

	"logistics/internal/db"
	uploadevents "logistics/internal/events"
	"logistics/internal/files"
	"logistics/internal/notifications"
	"logistics/internal/uploads"
	"logistics/internal/workbook"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
)

// DefaultCallTimeout bounds every external call so a hung dependency cannot
// starve the rest of the batch.
const DefaultCallTimeout = 30 * time.Second

// Config carries the environment-level settings for a Processor.
type Config struct {
	Table   string
	Topic   string
	Account string
	Stack   string
}

// Processor runs the ingestion pipeline for a batch of upload notifications.
// Clients are injected so tests can substitute fakes; nothing here holds
// global state.
type Processor struct {
	s3Client      files.GetObjectAPI
	dbClient      db.PutItemAPI
	snsClient     notifications.SNSPublishAPI
	mailer        notifications.ReceiptMailer
	metricsClient MetricsAPI // optional
	cfg           Config

	now         func() time.Time
	callTimeout time.Duration
}

// New creates a Processor. metricsClient may be nil to disable metrics.
func New(
	s3Client files.GetObjectAPI,
	dbClient db.PutItemAPI,
	snsClient notifications.SNSPublishAPI,
	mailer notifications.ReceiptMailer,
	metricsClient MetricsAPI,
	cfg Config,
) *Processor {
	return &Processor{
		s3Client:      s3Client,
		dbClient:      dbClient,
		snsClient:     snsClient,
		mailer:        mailer,
		metricsClient: metricsClient,
		cfg:           cfg,
		now:           time.Now,
		callTimeout:   DefaultCallTimeout,
	}
}

// BatchSummary counts how each message in one invocation ended up.
type BatchSummary struct {
	Processed   int // rows written and notifications dispatched
	ParseFailed int // file unreadable, failure notifications dispatched
	Malformed   int // event undecodable or key too short, logged and done
	Unhandled   int // unclassified failure, logged and done
}

type messageOutcome int

const (
	outcomeProcessed messageOutcome = iota
	outcomeParseFailed
	outcomeMalformed
	outcomeUnhandled
)

// Run processes every message in the batch sequentially and independently.
// Every message is driven to completion or explicitly logged as failed; the
// batch as a whole always acks so poison messages are not redelivered forever.
func (p *Processor) Run(ctx context.Context, event awsevents.SQSEvent) BatchSummary {
	batchID := uuid.New().String()[:8]
	log.Printf("[batch %s] Invocation started: %d records", batchID, len(event.Records))

	var summary BatchSummary

	wrapper := uploadevents.SQSEventWrapper{Event: &event}
	records, failures := wrapper.UnwrapUploadRecords()

	for _, failure := range failures {
		log.Printf("[batch %s] Malformed upload event %s: %v", batchID, failure.MessageID, failure.Err)
		summary.Malformed++
	}

	for _, record := range records {
		switch p.processRecord(ctx, batchID, record) {
		case outcomeProcessed:
			summary.Processed++
		case outcomeParseFailed:
			summary.ParseFailed++
		case outcomeMalformed:
			summary.Malformed++
		case outcomeUnhandled:
			summary.Unhandled++
		}
	}

	log.Printf("[batch %s] Invocation finished: processed=%d parse_failed=%d malformed=%d unhandled=%d",
		batchID, summary.Processed, summary.ParseFailed, summary.Malformed, summary.Unhandled)

	return summary
}

// processRecord isolates one message: a panic or stray error here must not
// touch the messages that follow.
func (p *Processor) processRecord(ctx context.Context, batchID string, record uploadevents.UploadRecord) (outcome messageOutcome) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[batch %s] Unhandled error processing %s/%s: %v\n%s",
				batchID, record.Bucket, record.Key, r, debug.Stack())
			outcome = outcomeUnhandled
		}
	}()

	return p.processUpload(ctx, record)
}

func (p *Processor) processUpload(ctx context.Context, record uploadevents.UploadRecord) messageOutcome {
	log.Printf("Processing %s/%s", record.Bucket, record.Key)

	identity, err := uploads.ParseIdentity(record.Key)
	if err != nil {
		log.Printf("Cannot derive upload identity for %s: %v", record.Key, err)
		return outcomeMalformed
	}

	log.Printf("Uploader: %s | Tenant: %s | Upload: %s",
		identity.UploaderAddress, identity.TenantID, identity.UploadID)

	sheet, err := p.openWorkbook(ctx, record)
	if err != nil {
		// Download and open failures both mean the file cannot be processed:
		// no rows are written and the failure notifications go out instead.
		log.Printf("Upload %s cannot be processed: %v", record.Key, err)
		p.notifyFailure(ctx, record, identity, err)
		return outcomeParseFailed
	}
	defer func() { _ = sheet.Close() }()

	written, dropped := p.writeRows(ctx, sheet, identity, record.Key)
	log.Printf("%d rows written for %s (%d dropped)", written, record.Key, dropped)

	p.notifyProcessed(ctx, record, identity, written)
	p.publishMetrics(ctx, identity.TenantID, written, dropped)

	return outcomeProcessed
}

func (p *Processor) openWorkbook(ctx context.Context, record uploadevents.UploadRecord) (*workbook.Sheet, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	data, err := files.DownloadObject(callCtx, p.s3Client, files.NewS3Object(record.Bucket, record.Key))
	if err != nil {
		return nil, err
	}

	return workbook.Open(data)
}

// writeRows persists each data row with a not-exists precondition. A
// duplicate is an expected redelivery artifact and is skipped; any other
// write failure drops that row only. The sheet is never aborted by one row.
func (p *Processor) writeRows(ctx context.Context, sheet *workbook.Sheet, identity uploads.Identity, sourceKey string) (written, dropped int) {
	err := sheet.EachRow(func(index int, row workbook.Row) error {
		shipmentID := db.NewShipmentID(p.now(), identity.UploadID, index)
		record := db.NewShipmentRecord(identity.TenantID, shipmentID, sourceKey, row)

		callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
		err := db.PutShipmentIfAbsent(callCtx, p.dbClient, p.cfg.Table, record)
		cancel()

		switch {
		case err == nil:
			written++
		case errors.Is(err, db.ErrShipmentExists):
			log.Printf("Row %d already exists, skipped", index)
		default:
			log.Printf("Failed to write row %d: %v", index, err)
			dropped++
		}
		return nil
	})
	if err != nil {
		// Rows already written stay written; the counts reflect what landed.
		log.Printf("Stopped reading rows early for %s: %v", sourceKey, err)
	}

	return written, dropped
}

func (p *Processor) notifyProcessed(ctx context.Context, record uploadevents.UploadRecord, identity uploads.Identity, written int) {
	p.broadcast(ctx, notifications.UploadProcessedNotification{
		Account:     p.cfg.Account,
		Stack:       p.cfg.Stack,
		ObjectKey:   record.Key,
		TenantID:    identity.TenantID,
		RowsWritten: written,
		Topic:       p.cfg.Topic,
	})

	p.sendReceipt(ctx, identity.UploaderAddress,
		notifications.ReceiptSubjectProcessed,
		notifications.ProcessedReceiptBody(identity.Filename, written))
}

func (p *Processor) notifyFailure(ctx context.Context, record uploadevents.UploadRecord, identity uploads.Identity, cause error) {
	p.broadcast(ctx, notifications.UploadFailedNotification{
		Account:   p.cfg.Account,
		Stack:     p.cfg.Stack,
		ObjectKey: record.Key,
		TenantID:  identity.TenantID,
		Cause:     cause.Error(),
		Topic:     p.cfg.Topic,
	})

	p.sendReceipt(ctx, identity.UploaderAddress,
		notifications.ReceiptSubjectFailed,
		notifications.FailedReceiptBody(identity.Filename))
}

// broadcast and sendReceipt are independent channels: a failure in either is
// logged and never escalates past the message being processed.
func (p *Processor) broadcast(ctx context.Context, notification notifications.SNSNotification) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	if err := notifications.Publish(callCtx, p.snsClient, notification); err != nil {
		log.Printf("Failed to publish broadcast: %v", err)
	}
}

func (p *Processor) sendReceipt(ctx context.Context, addr, subject, body string) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	p.mailer.Send(callCtx, addr, subject, body)
}

func (p *Processor) publishMetrics(ctx context.Context, tenantID string, written, dropped int) {
	if p.metricsClient == nil {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	if err := publishIngestMetrics(callCtx, p.metricsClient, p.cfg.Stack, tenantID, written, dropped); err != nil {
		log.Printf("Failed to publish ingest metrics: %v", err)
	}
}
