package pipeline

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwTypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// MetricsAPI defines the CloudWatch operation required to emit ingest metrics
type MetricsAPI interface {
	PutMetricData(ctx context.Context, input *cloudwatch.PutMetricDataInput, opts ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// publishIngestMetrics emits per-upload row counters. Best-effort: callers
// log failures and move on.
func publishIngestMetrics(ctx context.Context, client MetricsAPI, namespace, tenantID string, written, dropped int) error {
	now := time.Now()
	dimensions := []cwTypes.Dimension{
		{Name: aws.String("CompanyID"), Value: aws.String(tenantID)},
	}

	_, err := client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []cwTypes.MetricDatum{
			{
				MetricName: aws.String("RowsWritten"),
				Timestamp:  aws.Time(now),
				Value:      aws.Float64(float64(written)),
				Unit:       cwTypes.StandardUnitCount,
				Dimensions: dimensions,
			},
			{
				MetricName: aws.String("RowsDropped"),
				Timestamp:  aws.Time(now),
				Value:      aws.Float64(float64(dropped)),
				Unit:       cwTypes.StandardUnitCount,
				Dimensions: dimensions,
			},
		},
	})
	return err
}
