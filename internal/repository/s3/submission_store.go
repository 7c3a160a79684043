package s3

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/teamturing/competition-api/internal/pkg/errors"
)

// Config — параметры подключения к объектному хранилищу.
// Подходит и для AWS S3, и для совместимых хранилищ (MinIO, Supabase Storage S3).
type Config struct {
	Region    string
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
}

// SubmissionStore реализует repository.SubmissionStore поверх S3-совместимого API.
// Файлы лежат под ключами {user_id}/{имя файла}.
type SubmissionStore struct {
	client *s3.Client
	bucket string
}

// NewSubmissionStore создает клиент хранилища и проверяет конфигурацию
func NewSubmissionStore(ctx context.Context, cfg Config) (*SubmissionStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("storage credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// Кастомные endpoint'ы (MinIO и т.п.) обычно не поддерживают virtual-host адресацию
			o.UsePathStyle = true
		}
	})

	return &SubmissionStore{client: client, bucket: cfg.Bucket}, nil
}

// List возвращает имена файлов в пространстве пользователя
func (s *SubmissionStore) List(ctx context.Context, userID string) ([]string, error) {
	prefix := userID + "/"
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list submissions: %v", apperrors.ErrUpstream, err)
	}

	names := make([]string, 0, len(out.Contents))
	for _, obj := range out.Contents {
		if obj.Key == nil {
			continue
		}
		name := strings.TrimPrefix(*obj.Key, prefix)
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// Put загружает файл под ключ {userID}/{name}
func (s *SubmissionStore) Put(ctx context.Context, userID, name, contentType string, body io.Reader, size int64) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(userID + "/" + name),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload submission: %v", apperrors.ErrUpstream, err)
	}
	return nil
}

// Delete удаляет перечисленные файлы пользователя одним запросом
func (s *SubmissionStore) Delete(ctx context.Context, userID string, names []string) error {
	if len(names) == 0 {
		return nil
	}

	objects := make([]types.ObjectIdentifier, 0, len(names))
	for _, name := range names {
		objects = append(objects, types.ObjectIdentifier{
			Key: aws.String(userID + "/" + name),
		})
	}

	_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &types.Delete{
			Objects: objects,
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete submissions: %v", apperrors.ErrUpstream, err)
	}
	return nil
}
