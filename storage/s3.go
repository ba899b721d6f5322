package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// S3Store implements a metadata store using Amazon S3 or compatible services.
// Records are private objects at <prefix>/<hex id>.json.
type S3Store struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewS3Store creates a new S3 store. Without accessKey and secretKey the default AWS
// credential chain is used.
func NewS3Store(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Store, error) {
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if accessKey != "" {
		uri = fmt.Sprintf("s3://%s:***@%s/%s?region=%s", accessKey, bucketName, prefix, region)
	}
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		// S3-compatible servers such as minio do not serve virtual-host buckets.
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Store{
		client:      s3.New(sess),
		bucketName:  bucketName,
		prefix:      strings.Trim(prefix, "/"),
		log:         log,
		locationURI: uri,
	}, nil
}

// Get retrieves a record object. Returns ErrRecordNotFound if the object doesn't exist.
func (s *S3Store) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	start := time.Now()
	key := s.getObjectKey(id)

	result, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			s.log.Debug("Record not found in S3",
				slog.String("bucket", s.bucketName),
				slog.String("key", key),
				slog.Duration("duration", time.Since(start)))
			return interfaces.CertificateRecord{}, interfaces.ErrRecordNotFound
		}

		s.log.Error("Failed to get object from S3",
			slog.String("bucket", s.bucketName),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return interfaces.CertificateRecord{}, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return interfaces.CertificateRecord{}, fmt.Errorf("failed to read object body: %w", err)
	}

	s.log.Debug("Fetched record from S3",
		slog.String("bucket", s.bucketName),
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return decodeRecord(data)
}

// Put uploads the record, replacing any previous version.
func (s *S3Store) Put(ctx context.Context, record interfaces.CertificateRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	key := s.getObjectKey(record.ID)
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object to S3: %w", err)
	}

	s.log.Debug("Stored record in S3",
		slog.String("bucket", s.bucketName),
		slog.String("key", key),
		slog.String("certificateID", record.ID.String()))

	return nil
}

// Delete removes the record object. S3 treats deleting a missing key as success.
func (s *S3Store) Delete(ctx context.Context, id interfaces.CertificateID) error {
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(s.getObjectKey(id)),
	})
	if err != nil && !isS3NotFound(err) {
		return fmt.Errorf("failed to delete object from S3: %w", err)
	}
	return nil
}

// Available checks if the S3 store is accessible by attempting to head the bucket.
func (s *S3Store) Available(ctx context.Context) bool {
	start := time.Now()

	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		s.log.Warn("S3 store unavailable",
			slog.String("bucket", s.bucketName),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return false
	}

	return true
}

// Name returns a unique identifier for this store.
func (s *S3Store) Name() string {
	return fmt.Sprintf("s3-%s", s.bucketName)
}

// LocationURI returns the URI that identifies this store, with the secret redacted.
func (s *S3Store) LocationURI() string {
	return s.locationURI
}

func (s *S3Store) getObjectKey(id interfaces.CertificateID) string {
	name := recordKey(id) + ".json"
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

func isS3NotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return false
}
