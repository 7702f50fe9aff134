package service

import (
	"bytes"
	"context"
	"dating_scan_backend/internal/config"
	"dating_scan_backend/internal/model"
	"dating_scan_backend/internal/scoring"
	"dating_scan_backend/internal/util"
	"dating_scan_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// StorageProvider is an object store the result archive writes to.
type StorageProvider interface {
	Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, name string) error
	GetURL(name string) string
}

// LocalStorageProvider writes under a local directory.
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return "", err
	}
	return p.GetURL(name), nil
}

func (p *LocalStorageProvider) Delete(ctx context.Context, name string) error {
	return os.Remove(filepath.Join(p.Config.LocalPath, filepath.FromSlash(name)))
}

func (p *LocalStorageProvider) GetURL(name string) string {
	return "/archive/" + name
}

// MinioStorageProvider writes to a MinIO or other S3-compatible bucket.
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := p.Client.PutObject(ctx, p.Config.MinioBucket, name, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(name), nil
}

func (p *MinioStorageProvider) Delete(ctx context.Context, name string) error {
	return p.Client.RemoveObject(ctx, p.Config.MinioBucket, name, minio.RemoveObjectOptions{})
}

func (p *MinioStorageProvider) GetURL(name string) string {
	return "/" + p.Config.MinioBucket + "/" + name
}

// OSSStorageProvider writes to an Aliyun OSS bucket.
type OSSStorageProvider struct {
	Config *config.StorageConfig
	Client *oss.Client
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	return &OSSStorageProvider{Config: cfg, Client: client}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, name string, reader io.Reader, size int64, contentType string) (string, error) {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return "", err
	}
	if err := bucket.PutObject(name, reader, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		return "", err
	}
	return p.GetURL(name), nil
}

func (p *OSSStorageProvider) Delete(ctx context.Context, name string) error {
	bucket, err := p.Client.Bucket(p.Config.OSSBucket)
	if err != nil {
		return err
	}
	return bucket.DeleteObject(name, oss.WithContext(ctx))
}

func (p *OSSStorageProvider) GetURL(name string) string {
	return fmt.Sprintf("https://%s.%s/%s", p.Config.OSSBucket, p.Config.OSSEndpoint, name)
}

// NewStorageProvider picks the provider named in the config and falls back
// to local disk when the remote client cannot be built.
func NewStorageProvider(cfg *config.StorageConfig) StorageProvider {
	switch cfg.Type {
	case util.StorageMinio:
		p, err := NewMinioStorageProvider(cfg)
		if err == nil {
			return p
		}
		logger.Log.Warn("MinIO unavailable, archiving to local disk", zap.Error(err))
	case util.StorageOSS:
		p, err := NewOSSStorageProvider(cfg)
		if err == nil {
			return p
		}
		logger.Log.Warn("OSS unavailable, archiving to local disk", zap.Error(err))
	}
	return &LocalStorageProvider{Config: cfg}
}

// ArchiveService writes the combined result of a completed attempt to
// object storage, where the narrative pipeline picks it up.
type ArchiveService struct {
	Provider StorageProvider
}

func NewArchiveService(provider StorageProvider) *ArchiveService {
	return &ArchiveService{Provider: provider}
}

type archivedResult struct {
	AssessmentID string          `json:"assessmentId"`
	UserID       uint            `json:"userId"`
	CompletedAt  *time.Time      `json:"completedAt"`
	Result       *scoring.Result `json:"result"`
}

func ArchiveKey(a *model.Assessment) string {
	return fmt.Sprintf("results/%s/%s.json", a.DefinitionID, a.ID)
}

func (s *ArchiveService) Archive(ctx context.Context, a *model.Assessment, res *scoring.Result) (string, error) {
	data, err := json.Marshal(archivedResult{
		AssessmentID: a.ID,
		UserID:       a.UserID,
		CompletedAt:  a.CompletedAt,
		Result:       res,
	})
	if err != nil {
		return "", err
	}
	return s.Provider.Upload(ctx, ArchiveKey(a), bytes.NewReader(data), int64(len(data)), util.MimeJSON)
}
