package store

import (
	"context"
	"errors"
	"time"

	"shortlink-platform/internal/model"
)

var (
	// ErrNotFound 短码对应的记录不存在
	ErrNotFound = errors.New("link not found")

	// ErrCodeExists 短码已被占用
	ErrCodeExists = errors.New("code already exists")

	// ErrUnavailable 存储暂时不可用（超时、连接失败等），调用方可以退避重试
	ErrUnavailable = errors.New("store unavailable")
)

// LinkStore 定义链接存储的访问契约。
// 所有实现必须在并发访问下安全；唯一性和计数器语义必须由存储层原子地保证，
// 而不是由调用方先查后写拼出来。
type LinkStore interface {
	// GetByCode 按短码读取记录，不存在时返回 ErrNotFound。
	GetByCode(ctx context.Context, code string) (*model.Link, error)

	// ExistsByCode 检查短码是否已被占用（诊断用途，创建路径应使用 InsertIfAbsent）。
	ExistsByCode(ctx context.Context, code string) (bool, error)

	// InsertIfAbsent 原子地创建记录，短码已存在时返回 ErrCodeExists。
	InsertIfAbsent(ctx context.Context, link *model.Link) error

	// IncrementClicks 原子地把点击计数加一并刷新最近点击时间。
	// 记录不存在时返回 ErrNotFound。
	IncrementClicks(ctx context.Context, code string, clickedAt time.Time) error

	// UpdateOwnership 把给定短码中仍为匿名的链接批量转给 ownerID，
	// 同时清除过期时间。返回实际转移的条数，未命中不算错误。
	UpdateOwnership(ctx context.Context, codes []string, ownerID uint) (int64, error)

	// DeleteByCode 按短码删除记录，不存在时返回 ErrNotFound。
	// 归属校验由调用层完成，存储层不做鉴权。
	DeleteByCode(ctx context.Context, code string) error

	// ListByOwner 返回某用户的全部链接，按创建时间倒序。
	ListByOwner(ctx context.Context, ownerID uint) ([]model.Link, error)
}
