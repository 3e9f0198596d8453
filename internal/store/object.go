package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"serialtag/internal/config"
	"serialtag/internal/models"
)

const objectPrefix = "batches/"

// ObjectStore keeps batches in an S3-compatible bucket using the same layout
// as the filesystem backend, under a "batches/" prefix.
type ObjectStore struct {
	client *minio.Client
	bucket string
	region string
	now    func() time.Time
}

func NewObjectStore(cfg config.Config) (*ObjectStore, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &ObjectStore{
		client: client,
		bucket: cfg.S3Bucket,
		region: cfg.S3Region,
		now:    time.Now,
	}, nil
}

// EnsureBucket makes sure the batch bucket exists before first use.
func (s *ObjectStore) EnsureBucket(ctx context.Context) error {
	if s == nil {
		return errors.New("object store is nil")
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", s.bucket, err)
		}
	}

	return nil
}

func (s *ObjectStore) Write(ctx context.Context, batch models.Batch) (string, error) {
	if s == nil {
		return "", errors.New("object store is nil")
	}

	now := s.now()
	id := NewBatchID(now)
	recordsKey := objectPrefix + id + "/" + recordsFileName

	if _, err := s.client.StatObject(ctx, s.bucket, recordsKey, minio.StatObjectOptions{}); err == nil {
		return "", fmt.Errorf("write batch %s: %w", id, ErrBatchExists)
	}

	stored := batch.Clone()
	stored.ID = id
	stored.CreatedAt = now.UTC()

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}

	putOpts := minio.PutObjectOptions{ContentType: "application/json"}
	if _, err := s.client.PutObject(ctx, s.bucket, recordsKey, bytes.NewReader(data), int64(len(data)), putOpts); err != nil {
		return "", fmt.Errorf("write batch records: %w", err)
	}

	for serial, image := range batch.Images {
		key := fmt.Sprintf("%s%s/qr_%s.png", objectPrefix, id, serial)
		imageOpts := minio.PutObjectOptions{ContentType: "image/png"}
		if _, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(image), int64(len(image)), imageOpts); err != nil {
			return "", fmt.Errorf("write qr image %s: %w", serial, err)
		}
	}

	return id, nil
}

func (s *ObjectStore) ListBatches(ctx context.Context) ([]string, error) {
	if s == nil {
		return nil, errors.New("object store is nil")
	}

	var ids []string
	listOpts := minio.ListObjectsOptions{Prefix: objectPrefix, Recursive: false}
	for object := range s.client.ListObjects(ctx, s.bucket, listOpts) {
		if object.Err != nil {
			return nil, fmt.Errorf("list batches: %w", object.Err)
		}
		id := strings.TrimSuffix(strings.TrimPrefix(object.Key, objectPrefix), "/")
		if !validBatchID(id) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids, nil
}

func (s *ObjectStore) Read(ctx context.Context, id string) (models.Batch, error) {
	if s == nil {
		return models.Batch{}, errors.New("object store is nil")
	}

	key := objectPrefix + id + "/" + recordsFileName
	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return models.Batch{}, fmt.Errorf("read batch %s: %w", id, ErrBatchNotFound)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return models.Batch{}, fmt.Errorf("read batch %s: %w", id, ErrBatchNotFound)
	}

	var batch models.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return models.Batch{}, fmt.Errorf("decode batch %s: %w", id, ErrBatchNotFound)
	}

	return batch, nil
}
