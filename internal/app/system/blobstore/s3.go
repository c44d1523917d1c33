package blobstore

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// S3Config configures an S3 (or S3-compatible) bucket.
type S3Config struct {
	Region   string
	Bucket   string
	Prefix   string
	Endpoint string // optional, for S3-compatible services
	// PublicURL overrides the URL base objects are served from, e.g. a CDN.
	PublicURL string
}

// S3 stores objects in a bucket. Credentials come from the default AWS
// chain (environment, shared config, instance role).
type S3 struct {
	client   s3iface.S3API
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
	baseURL  string
}

// NewS3 opens an AWS session for cfg.
func NewS3(cfg S3Config) (*S3, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	return newS3(s3.New(sess), cfg), nil
}

func newS3(client s3iface.S3API, cfg S3Config) *S3 {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		switch {
		case cfg.Endpoint != "":
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		default:
			base = "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
		}
	}
	return &S3{
		client:   client,
		uploader: s3manager.NewUploaderWithClient(client),
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		baseURL:  base,
	}
}

func (s *S3) objectKey(key string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix == "" {
		return key, nil
	}
	return s.prefix + "/" + key, nil
}

func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	k, err := s.objectKey(key)
	if err != nil {
		return err
	}
	in := &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
		Body:   r,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	_, err = s.uploader.UploadWithContext(ctx, in)
	return err
}

func (s *S3) Delete(ctx context.Context, key string) error {
	k, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	return err
}

func (s *S3) URL(key string) string {
	k, err := s.objectKey(key)
	if err != nil {
		return ""
	}
	return s.baseURL + "/" + k
}
