package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aristath/kafkanator/pkg/inequality"
)

// S3Config configures access to the bucket datasets are read from.
type S3Config struct {
	Region          string
	Endpoint        string // Optional, for S3 compatible stores
	AccessKeyID     string // Optional static credentials
	SecretAccessKey string
}

// objectDownloader is the subset of manager.Downloader used here.
type objectDownloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// S3Fetcher downloads dataset objects and parses them by extension.
type S3Fetcher struct {
	downloader objectDownloader
}

// NewS3Client builds an S3 client from the default credential chain, using
// static credentials when both keys are set.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewS3Fetcher creates a fetcher on top of client
func NewS3Fetcher(client *s3.Client) *S3Fetcher {
	return &S3Fetcher{downloader: manager.NewDownloader(client)}
}

// Fetch downloads s3://bucket/key and parses it as CSV or XLSX based on the
// key extension. sheet is only used for workbooks.
func (f *S3Fetcher) Fetch(ctx context.Context, bucket, key, sheet string) (*Table, error) {
	if bucket == "" || key == "" {
		return nil, inequality.ConfigError("s3", "s3 source needs both bucket and key")
	}

	buf := manager.NewWriteAtBuffer(nil)
	if _, err := f.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		return nil, fmt.Errorf("failed to download s3://%s/%s: %w", bucket, key, err)
	}

	body := bytes.NewReader(buf.Bytes())
	switch strings.ToLower(path.Ext(key)) {
	case ".csv", ".txt":
		return ReadCSV(body, CSVOptions{})
	case ".tsv":
		return ReadCSV(body, CSVOptions{Comma: '\t'})
	case ".xlsx":
		return ReadXLSX(body, sheet)
	}
	return nil, inequality.ConfigError("s3", "unsupported object type %q", path.Ext(key))
}
