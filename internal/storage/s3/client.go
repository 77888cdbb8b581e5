package s3

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/sirupsen/logrus"

	"github.com/hoopstat-haus/pipeline/pkg/errors"
	"github.com/hoopstat-haus/pipeline/pkg/interfaces"
)

// Config holds configuration for the S3 object store.
type Config struct {
	Region          string        `json:"region" mapstructure:"region"`
	Bucket          string        `json:"bucket" mapstructure:"bucket"`
	AccessKeyID     string        `json:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string        `json:"secret_access_key" mapstructure:"secret_access_key"`
	SessionToken    string        `json:"session_token,omitempty" mapstructure:"session_token"`
	Endpoint        string        `json:"endpoint,omitempty" mapstructure:"endpoint"`
	ForcePathStyle  bool          `json:"force_path_style" mapstructure:"force_path_style"`
	DisableSSL      bool          `json:"disable_ssl" mapstructure:"disable_ssl"`
	Prefix          string        `json:"prefix" mapstructure:"prefix"`
	Timeout         time.Duration `json:"timeout" mapstructure:"timeout"`
	MaxRetries      int           `json:"max_retries" mapstructure:"max_retries"`
	UseCompression  bool          `json:"use_compression" mapstructure:"use_compression"`
	StorageClass    string        `json:"storage_class" mapstructure:"storage_class"`
}

// Store implements interfaces.ObjectStore on AWS S3 (or an S3-compatible
// endpoint). Quarantine entries and partitioned Gold outputs both land
// here.
type Store struct {
	config     *Config
	s3Client   *awss3.S3
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
	logger     *logrus.Logger
	mu         sync.RWMutex
	metrics    *storeMetrics
	closed     bool
}

type storeMetrics struct {
	readOps      int64
	writeOps     int64
	deleteOps    int64
	errorCount   int64
	bytesRead    int64
	bytesWritten int64
	startTime    time.Time
	mu           sync.Mutex
}

// NewStore creates a new S3 object store instance. Call Connect before use.
func NewStore(config *Config, logger *logrus.Logger) (*Store, error) {
	if config == nil {
		return nil, errors.NewStorageError(errors.CodeInvalidConfig, "S3 config cannot be nil")
	}
	if config.Bucket == "" {
		return nil, errors.NewStorageError(errors.CodeInvalidConfig, "S3 bucket is required")
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Store{
		config: config,
		logger: logger,
		metrics: &storeMetrics{
			startTime: time.Now(),
		},
	}, nil
}

// Connect establishes the S3 session and verifies bucket access.
func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.s3Client != nil {
		return nil // Already connected
	}

	awsConfig := &aws.Config{
		Region:     aws.String(s.config.Region),
		MaxRetries: aws.Int(s.config.MaxRetries),
	}

	if s.config.AccessKeyID != "" && s.config.SecretAccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(
			s.config.AccessKeyID,
			s.config.SecretAccessKey,
			s.config.SessionToken,
		)
	}

	// Custom endpoint covers S3-compatible services and local stacks.
	if s.config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(s.config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(s.config.ForcePathStyle)
	}

	if s.config.DisableSSL {
		awsConfig.DisableSSL = aws.Bool(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed,
			"failed to create AWS session")
	}

	s.s3Client = awss3.New(sess)
	s.uploader = s3manager.NewUploader(sess)
	s.downloader = s3manager.NewDownloader(sess)

	_, err = s.s3Client.HeadBucketWithContext(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(s.config.Bucket),
	})
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed,
			fmt.Sprintf("failed to access bucket %q", s.config.Bucket))
	}

	s.logger.WithFields(logrus.Fields{
		"region": s.config.Region,
		"bucket": s.config.Bucket,
	}).Info("Connected to S3")

	return nil
}

// Close releases the S3 session.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.s3Client = nil
	s.uploader = nil
	s.downloader = nil
	s.closed = true

	s.logger.Info("S3 connection closed")
	return nil
}

// Ping tests the S3 connection.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.s3Client == nil {
		return errors.NewStorageError(errors.CodeConnectionFailed, "S3 not connected")
	}

	_, err := s.s3Client.HeadBucketWithContext(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(s.config.Bucket),
	})
	if err != nil {
		s.incrementErrorCount()
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeConnectionFailed, "S3 ping failed")
	}

	return nil
}

// Put writes data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.uploader == nil {
		return errors.NewStorageError(errors.CodeConnectionFailed, "S3 not connected")
	}

	start := time.Now()
	defer func() {
		s.incrementWriteOps()
		s.logger.WithFields(logrus.Fields{
			"key":      key,
			"duration": time.Since(start),
		}).Debug("Put operation completed")
	}()

	var body io.Reader = bytes.NewReader(data)
	contentEncoding := ""

	if s.config.UseCompression {
		var buf bytes.Buffer
		gzWriter := gzip.NewWriter(&buf)
		if _, err := gzWriter.Write(data); err != nil {
			s.incrementErrorCount()
			return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
				"failed to compress data")
		}
		gzWriter.Close()

		body = bytes.NewReader(buf.Bytes())
		contentEncoding = "gzip"
		s.incrementBytesWritten(int64(buf.Len()))
	} else {
		s.incrementBytesWritten(int64(len(data)))
	}

	uploadInput := &s3manager.UploadInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.fullKey(key)),
		Body:   body,
	}
	if contentEncoding != "" {
		uploadInput.ContentEncoding = aws.String(contentEncoding)
	}
	if s.config.StorageClass != "" {
		uploadInput.StorageClass = aws.String(s.config.StorageClass)
	}

	if _, err := s.uploader.UploadWithContext(ctx, uploadInput); err != nil {
		s.incrementErrorCount()
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("failed to upload %q", key))
	}

	return nil
}

// Get reads the object stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.downloader == nil {
		return nil, errors.NewStorageError(errors.CodeConnectionFailed, "S3 not connected")
	}

	start := time.Now()
	defer func() {
		s.incrementReadOps()
		s.logger.WithFields(logrus.Fields{
			"key":      key,
			"duration": time.Since(start),
		}).Debug("Get operation completed")
	}()

	buf := aws.NewWriteAtBuffer([]byte{})
	_, err := s.downloader.DownloadWithContext(ctx, buf, &awss3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		s.incrementErrorCount()
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == awss3.ErrCodeNoSuchKey {
			return nil, errors.WrapError(errors.ErrObjectNotFound, errors.ErrorTypeStorage,
				errors.CodeObjectNotFound, fmt.Sprintf("object %q not found", key))
		}
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("failed to download %q", key))
	}

	data := buf.Bytes()
	s.incrementBytesRead(int64(len(data)))

	if s.config.UseCompression {
		gzReader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			s.incrementErrorCount()
			return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
				"failed to decompress data")
		}
		defer gzReader.Close()

		decompressed, err := io.ReadAll(gzReader)
		if err != nil {
			s.incrementErrorCount()
			return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
				"failed to read decompressed data")
		}
		data = decompressed
	}

	return data, nil
}

// List returns every key under the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.s3Client == nil {
		return nil, errors.NewStorageError(errors.CodeConnectionFailed, "S3 not connected")
	}

	input := &awss3.ListObjectsV2Input{
		Bucket: aws.String(s.config.Bucket),
		Prefix: aws.String(s.fullKey(prefix)),
	}

	var keys []string
	err := s.s3Client.ListObjectsV2PagesWithContext(ctx, input,
		func(page *awss3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				keys = append(keys, s.trimPrefix(aws.StringValue(obj.Key)))
			}
			return true
		})
	if err != nil {
		s.incrementErrorCount()
		return nil, errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeReadFailed,
			fmt.Sprintf("failed to list objects under %q", prefix))
	}

	s.incrementReadOps()
	return keys, nil
}

// Delete removes the object stored under key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.s3Client == nil {
		return errors.NewStorageError(errors.CodeConnectionFailed, "S3 not connected")
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		s.incrementErrorCount()
		return errors.WrapError(err, errors.ErrorTypeStorage, errors.CodeWriteFailed,
			fmt.Sprintf("failed to delete %q", key))
	}

	s.incrementDeleteOps()
	return nil
}

// GetInfo returns information about the store.
func (s *Store) GetInfo(ctx context.Context) (*interfaces.StoreInfo, error) {
	return &interfaces.StoreInfo{
		Type:        "s3",
		Name:        "Amazon S3 Object Store",
		Description: "Partitioned Gold-layer and quarantine storage on S3",
		Config: map[string]interface{}{
			"region":          s.config.Region,
			"bucket":          s.config.Bucket,
			"prefix":          s.config.Prefix,
			"use_compression": s.config.UseCompression,
			"storage_class":   s.config.StorageClass,
		},
	}, nil
}

// GetMetrics returns operation counters for the store.
func (s *Store) GetMetrics(ctx context.Context) (*interfaces.StoreMetrics, error) {
	s.metrics.mu.Lock()
	defer s.metrics.mu.Unlock()

	return &interfaces.StoreMetrics{
		ReadOperations:   s.metrics.readOps,
		WriteOperations:  s.metrics.writeOps,
		DeleteOperations: s.metrics.deleteOps,
		ErrorCount:       s.metrics.errorCount,
		BytesRead:        s.metrics.bytesRead,
		BytesWritten:     s.metrics.bytesWritten,
		Uptime:           time.Since(s.metrics.startTime),
	}, nil
}

// Helper methods

func (s *Store) fullKey(key string) string {
	if s.config.Prefix == "" {
		return key
	}
	return path.Join(s.config.Prefix, key)
}

func (s *Store) trimPrefix(key string) string {
	if s.config.Prefix == "" {
		return key
	}
	return strings.TrimPrefix(strings.TrimPrefix(key, s.config.Prefix), "/")
}

func (s *Store) incrementReadOps() {
	s.metrics.mu.Lock()
	s.metrics.readOps++
	s.metrics.mu.Unlock()
}

func (s *Store) incrementWriteOps() {
	s.metrics.mu.Lock()
	s.metrics.writeOps++
	s.metrics.mu.Unlock()
}

func (s *Store) incrementDeleteOps() {
	s.metrics.mu.Lock()
	s.metrics.deleteOps++
	s.metrics.mu.Unlock()
}

func (s *Store) incrementErrorCount() {
	s.metrics.mu.Lock()
	s.metrics.errorCount++
	s.metrics.mu.Unlock()
}

func (s *Store) incrementBytesRead(n int64) {
	s.metrics.mu.Lock()
	s.metrics.bytesRead += n
	s.metrics.mu.Unlock()
}

func (s *Store) incrementBytesWritten(n int64) {
	s.metrics.mu.Lock()
	s.metrics.bytesWritten += n
	s.metrics.mu.Unlock()
}
