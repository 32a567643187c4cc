package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"medkit/internal/model/resource"
	"medkit/internal/pkg/id"
	"medkit/internal/pkg/storage"
	resourceRepo "medkit/internal/repository/resource"
)

// ErrResourceNotFound 资源不存在
var ErrResourceNotFound = errors.New("资源不存在")

// ResourceService 资源服务
// 职责: 文件上传落存储 + 资源记录落库（检验报告原件等附件）
type ResourceService struct {
	repo    *resourceRepo.ResourceRepo
	storage storage.Storage
}

// NewResourceService 创建资源服务
func NewResourceService(repo *resourceRepo.ResourceRepo, store storage.Storage) *ResourceService {
	return &ResourceService{
		repo:    repo,
		storage: store,
	}
}

// Upload 服务端上传文件并创建资源记录
func (s *ResourceService) Upload(ctx context.Context, userID, fileName, ext, contentType string, size int64, data io.Reader) (*resource.Resource, error) {
	resourceID := id.New()
	key := buildStorageKey(userID, resourceID, ext)

	if _, err := s.storage.Upload(ctx, key, data, contentType); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload file")
		return nil, fmt.Errorf("上传文件失败: %w", err)
	}

	res := &resource.Resource{
		ID:          resourceID,
		UserID:      userID,
		Ext:         ext,
		Name:        fileName,
		StorageKey:  key,
		StorageType: s.storage.GetStorageType(),
		FileSize:    size,
		ContentType: contentType,
		Status:      resource.ResourceStatusUploaded,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		// 记录创建失败时清掉已上传的文件，避免孤儿对象
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to clean up orphan file")
		}
		return nil, fmt.Errorf("创建资源记录失败: %w", err)
	}

	return res, nil
}

// Get 查询资源记录
func (s *ResourceService) Get(ctx context.Context, resourceID string) (*resource.Resource, error) {
	res, err := s.repo.FindByID(ctx, resourceID)
	if err != nil {
		return nil, ErrResourceNotFound
	}
	if res.Status == resource.ResourceStatusDeleted {
		return nil, ErrResourceNotFound
	}
	return res, nil
}

// GetDownloadURL 生成资源的预签名下载URL
func (s *ResourceService) GetDownloadURL(ctx context.Context, resourceID string, expiresIn time.Duration) (string, error) {
	res, err := s.Get(ctx, resourceID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedDownloadURL(ctx, res.StorageKey, expiresIn)
}

// List 查询上传者的资源列表
func (s *ResourceService) List(ctx context.Context, userID string, limit, offset int64) ([]*resource.Resource, int64, error) {
	return s.repo.FindByUserID(ctx, userID, limit, offset)
}

// Delete 删除资源（存储对象 + 记录标记删除）
func (s *ResourceService) Delete(ctx context.Context, resourceID string) error {
	res, err := s.Get(ctx, resourceID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, res.StorageKey); err != nil {
		log.Warn().Err(err).Str("key", res.StorageKey).Msg("failed to delete storage object")
	}
	return s.repo.MarkDeleted(ctx, resourceID)
}

// buildStorageKey 生成存储路径: uploads/{userID}/{resourceID}.{ext}
func buildStorageKey(userID, resourceID, ext string) string {
	if ext == "" {
		return fmt.Sprintf("uploads/%s/%s", userID, resourceID)
	}
	return fmt.Sprintf("uploads/%s/%s.%s", userID, resourceID, ext)
}
