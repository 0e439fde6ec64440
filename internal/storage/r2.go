// Package storage uploads order documents to an S3-compatible bucket
// (Cloudflare R2 in production) and hands back FileRefs the order core
// treats as opaque.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "github.com/algorhythmicdev/reclame-OMS-sub000/internal/config"
	"github.com/algorhythmicdev/reclame-OMS-sub000/internal/models"
)

type Service struct {
	client *s3.Client
	bucket string
}

// New builds the object storage client from config. Returns an error when
// credentials are missing so the caller can decide whether to run without
// uploads (dev mode).
func New(ctx context.Context, cfg *appconfig.Config) (*Service, error) {
	if cfg.Storage.Endpoint == "" || cfg.Storage.AccessKey == "" {
		return nil, fmt.Errorf("object storage not configured")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure storage client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
	})

	return &Service{client: client, bucket: cfg.Storage.Bucket}, nil
}

// Upload stores the document under orders/{orderID}/ and returns its FileRef.
func (s *Service) Upload(ctx context.Context, orderID, filename string, data []byte) (models.FileRef, error) {
	id := uuid.NewString()
	key := fmt.Sprintf("orders/%s/%s_%s", orderID, id, filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(filename)),
	})
	if err != nil {
		return models.FileRef{}, fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	log.Printf("[Storage] Uploaded %s (%d bytes)", key, len(data))

	return models.FileRef{
		ID:   id,
		Name: filename,
		Path: key,
		Kind: DetectKind(filename),
	}, nil
}

// DetectKind maps a filename extension to the FileRef kind.
func DetectKind(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "pdf"
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg":
		return "image"
	case ".cdr":
		return "cdr"
	default:
		return "other"
	}
}

func contentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}
