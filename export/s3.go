package export

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes an S3-compatible bucket (AWS S3, MinIO and the like).
type S3Config struct {
	Bucket       string `json:"bucket"         mapstructure:"bucket"         yaml:"bucket"`
	Prefix       string `json:"prefix"         mapstructure:"prefix"         yaml:"prefix"`
	Region       string `json:"region"         mapstructure:"region"         yaml:"region"`
	Endpoint     string `json:"endpoint"       mapstructure:"endpoint"       yaml:"endpoint"`
	AccessKey    string `json:"access_key"     mapstructure:"access_key"     yaml:"access_key"`
	SecretKey    string `json:"secret_key"     mapstructure:"secret_key"     yaml:"secret_key"`
	UsePathStyle bool   `json:"use_path_style" mapstructure:"use_path_style" yaml:"use_path_style"`
}

// S3API is the subset of *s3.Client used by S3Sink.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads exported files to a bucket.
type S3Sink struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Sink creates a sink writing to bucket under prefix.
func NewS3Sink(client S3API, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// NewS3SinkFromConfig builds the S3 client from cfg. Static credentials are
// used when both keys are set; otherwise the default AWS credential chain
// applies.
func NewS3SinkFromConfig(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("export: s3 bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("export: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewS3Sink(client, cfg.Bucket, cfg.Prefix), nil
}

// Save implements Sink. The location is an s3:// URI.
func (s *S3Sink) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	key := path.Join(s.prefix, name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("export: s3 put %s: %w", key, err)
	}
	return "s3://" + s.bucket + "/" + key, nil
}
