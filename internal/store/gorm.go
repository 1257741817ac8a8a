package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shortlink-platform/internal/model"
)

// GormLinkStore 基于 GORM 的 LinkStore 实现。
// 唯一性靠 code 上的唯一索引，计数与批量转移都是单条服务端 UPDATE。
type GormLinkStore struct {
	db *gorm.DB
}

// NewGormLinkStore 创建存储实例
func NewGormLinkStore(db *gorm.DB) *GormLinkStore {
	return &GormLinkStore{db: db}
}

func (s *GormLinkStore) GetByCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error; err != nil {
		return nil, translate(err)
	}
	return &link, nil
}

func (s *GormLinkStore) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Link{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

func (s *GormLinkStore) InsertIfAbsent(ctx context.Context, link *model.Link) error {
	// 依赖唯一索引 + TranslateError，冲突在这里变成 ErrCodeExists，
	// 不做先查后插的两步操作
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormLinkStore) IncrementClicks(ctx context.Context, code string, clickedAt time.Time) error {
	result := s.db.WithContext(ctx).Model(&model.Link{}).Where("code = ?", code).Updates(map[string]interface{}{
		"total_clicks":    gorm.Expr("total_clicks + 1"),
		"last_clicked_at": clickedAt,
	})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormLinkStore) UpdateOwnership(ctx context.Context, codes []string, ownerID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Link{}).
		Where("code IN ? AND is_anonymous = ?", codes, true).
		Updates(map[string]interface{}{
			"owner_id":     ownerID,
			"is_anonymous": false,
			"expires_at":   nil,
		})
	if result.Error != nil {
		return 0, translate(result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormLinkStore) DeleteByCode(ctx context.Context, code string) error {
	result := s.db.WithContext(ctx).Where("code = ?", code).Delete(&model.Link{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormLinkStore) ListByOwner(ctx context.Context, ownerID uint) ([]model.Link, error) {
	var links []model.Link
	err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).
		Order("created_at DESC").Find(&links).Error
	if err != nil {
		return nil, translate(err)
	}
	if links == nil {
		links = []model.Link{}
	}
	return links, nil
}

// translate 把 GORM / 驱动错误归一到存储契约的哨兵错误。
// 未识别的数据库错误一律按暂时不可用处理，留给调用方退避重试。
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrCodeExists
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
