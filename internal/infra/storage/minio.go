package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Store keeps chat transcripts (and other artifacts) in a MinIO bucket.
type Store struct {
	client     *minio.Client
	bucketName string
	prefix     string
	presign    time.Duration
}

// Options for New. PresignTTL > 0 makes Put return presigned GET URLs instead of public ones.
type Options struct {
	Endpoint   string
	Region     string
	Bucket     string
	AccessKey  string
	SecretKey  string
	UseSSL     bool
	Prefix     string
	PresignTTL time.Duration
}

// New buat koneksi MinIO
func New(ctx context.Context, o Options) (*Store, error) {
	cli, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: o.UseSSL,
		Region: o.Region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, o.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, o.Bucket, minio.MakeBucketOptions{Region: o.Region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: o.Bucket, prefix: strings.Trim(o.Prefix, "/"), presign: o.PresignTTL}, nil
}

// Put implementasi storage.ArtifactStore
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	object := objectKey(s.prefix, key)
	_, err := s.client.PutObject(ctx, s.bucketName, object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", object, err)
	}

	if s.presign > 0 {
		u, err := s.client.PresignedGetObject(ctx, s.bucketName, object, s.presign, url.Values{})
		if err != nil {
			return "", fmt.Errorf("presign %s: %w", object, err)
		}
		return u.String(), nil
	}
	// URL publik (jika bucket public)
	return publicURL(s.client.EndpointURL(), s.bucketName, object), nil
}

// Ping dipakai health check
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}

func objectKey(prefix, key string) string {
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

func publicURL(endpoint *url.URL, bucket, object string) string {
	scheme := "http"
	if endpoint != nil && endpoint.Scheme != "" {
		scheme = endpoint.Scheme
	}
	host := ""
	if endpoint != nil {
		host = endpoint.Host
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, host, bucket, object)
}
