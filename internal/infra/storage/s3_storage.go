package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appconfig "woodify/internal/config"
	repo "woodify/internal/repository"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

var _ repo.BlobStore = (*S3ObjectStorage)(nil)

// S3ObjectStorage は S3互換ストレージ（AWS / MinIO など）に添付を置く
type S3ObjectStorage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	presignTTL    time.Duration
	log           *zap.Logger
}

func NewS3ObjectStorage(ctx context.Context, cfg appconfig.S3Config, log *zap.Logger) (*S3ObjectStorage, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	// キーが無ければ環境のデフォルト認証（IAMロールなど）
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(cfg.Endpoint))
		}
	})

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &S3ObjectStorage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		presignTTL:    ttl,
		log:           log,
	}, nil
}

func endpointURL(ep string) string {
	if strings.HasPrefix(ep, "http://") || strings.HasPrefix(ep, "https://") {
		return ep
	}
	return "http://" + ep
}

func (s *S3ObjectStorage) UploadBlob(ctx context.Context, path, contentType string, data []byte) (repo.BlobRef, error) {
	key, err := cleanKey(path)
	if err != nil {
		return repo.BlobRef{}, err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		s.log.Error("s3 upload failed", zap.String("key", key), zap.Error(err))
		return repo.BlobRef{}, fmt.Errorf("upload %s: %w", key, err)
	}

	return repo.BlobRef{Path: key, ContentType: contentType, Size: int64(len(data))}, nil
}

// GetDownloadURL は署名付きGET URLを返す
func (s *S3ObjectStorage) GetDownloadURL(ctx context.Context, ref repo.BlobRef) (string, error) {
	if ref.Path == "" {
		return "", errors.New("storage key is required")
	}
	req, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref.Path),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", ref.Path, err)
	}
	return req.URL, nil
}
