// Package export uploads payout artifacts to S3.
package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/lumina/partnerdesk/internal/config"
)

// s3PutAPI is the slice of the S3 client the exporter uses, extracted so
// tests can script uploads.
type s3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter writes payout CSVs to an S3 bucket.
type S3Exporter struct {
	client s3PutAPI
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Exporter creates an exporter using the default AWS credential chain.
func NewS3Exporter(ctx context.Context, cfg config.ExportConfig) (*S3Exporter, error) {
	region := cfg.AWSRegion
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &S3Exporter{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.S3Bucket,
		prefix: strings.TrimSuffix(cfg.KeyPrefix, "/"),
		now:    time.Now,
	}, nil
}

// UploadPayoutCSV stores the CSV under a date-stamped key and returns it.
func (e *S3Exporter) UploadPayoutCSV(ctx context.Context, batchID string, csv []byte) (string, error) {
	key := fmt.Sprintf("payouts/%s/batch-%s.csv", e.now().UTC().Format("2006-01-02"), batchID)
	if e.prefix != "" {
		key = e.prefix + "/" + key
	}
	_, err := e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(csv),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}
