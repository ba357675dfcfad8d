package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"postfeed/internal/common"
	"postfeed/internal/config"
)

const (
	PrefixPosts   = "posts"
	PrefixAvatars = "avatars"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Storage keeps uploaded images and hands out their public URLs. The URL is
// the image reference stored in documents.
type Storage interface {
	UploadImage(ctx context.Context, prefix, ownerID, fileName string, data []byte) (objectName, imageURL string, err error)
	DeleteImage(ctx context.Context, objectName string) error
	ObjectName(imageURL string) (string, bool)
}

type MinIOClient struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

func NewMinIOClient(ctx context.Context, cfg *config.Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	m := &MinIOClient{
		client:  client,
		bucket:  cfg.MinIO.BucketName,
		baseURL: PublicBaseURL(cfg.MinIO),
	}

	if err := m.ensureBucket(ctx, cfg.MinIO.Region); err != nil {
		return nil, err
	}

	return m, nil
}

// PublicBaseURL is the prefix every object URL in the bucket starts with.
func PublicBaseURL(cfg config.MinIO) string {
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/", scheme, strings.TrimRight(cfg.Endpoint, "/"), cfg.BucketName)
}

func (m *MinIOClient) ensureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", m.bucket, err)
	}

	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, m.bucket)
	if err := m.client.SetBucketPolicy(ctx, m.bucket, policy); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}

	return nil
}

// DetectImage sniffs data and accepts only jpeg, png, gif and webp.
func DetectImage(data []byte) (contentType, ext string, err error) {
	mtype := mimetype.Detect(data)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return allowed, mtype.Extension(), nil
		}
	}
	return "", "", fmt.Errorf("unsupported image type %s: %w", mtype.String(), common.ErrValidation)
}

// BuildObjectName lays objects out as {prefix}/{owner}/{yyyy}/{mm}/{uuid}{ext}.
func BuildObjectName(prefix, ownerID, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d/%02d/%s%s",
		prefix,
		ownerID,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		ext)
}

func (m *MinIOClient) UploadImage(ctx context.Context, prefix, ownerID, fileName string, data []byte) (string, string, error) {
	contentType, ext, err := DetectImage(data)
	if err != nil {
		return "", "", err
	}

	now := time.Now().UTC()
	objectName := BuildObjectName(prefix, ownerID, ext, now)

	_, err = m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"owner-id":          ownerID,
				"uploaded-at":       now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", "", fmt.Errorf("upload %s: %w", objectName, err)
	}

	return objectName, m.baseURL + objectName, nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectName, err)
	}
	return nil
}

// ObjectName recovers the object key from a URL produced by UploadImage.
// References pointing elsewhere are reported with ok=false.
func (m *MinIOClient) ObjectName(imageURL string) (string, bool) {
	return objectNameFromURL(m.baseURL, imageURL)
}

func objectNameFromURL(baseURL, imageURL string) (string, bool) {
	name, ok := strings.CutPrefix(imageURL, baseURL)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
