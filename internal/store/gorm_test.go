package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"shortlink-platform/internal/model"
)

// setupStore 用内存 sqlite 初始化一个干净的存储。
// 连接数限制为 1：:memory: 下每个连接是独立的库，单连接同时避免并发写锁冲突。
func setupStore(t *testing.T) *GormLinkStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Link{}, &model.User{}))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return NewGormLinkStore(db)
}

func TestInsertIfAbsent_Collision(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	first := model.NewOwnedLink("abc123", "https://example.com/a", 1)
	require.NoError(t, s.InsertIfAbsent(ctx, first))

	second := model.NewOwnedLink("abc123", "https://example.com/b", 2)
	err := s.InsertIfAbsent(ctx, second)
	assert.ErrorIs(t, err, ErrCodeExists)

	// 冲突之后只应存在第一条记录
	link, err := s.GetByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", link.TargetURL)
}

func TestGetByCode_NotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetByCode(context.Background(), "nothere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExistsByCode(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	exists, err := s.ExistsByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.InsertIfAbsent(ctx, model.NewOwnedLink("abc123", "https://example.com", 1)))

	exists, err = s.ExistsByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestIncrementClicks(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertIfAbsent(ctx, model.NewOwnedLink("abc123", "https://example.com", 1)))

	clickedAt := time.Now().Truncate(time.Second)
	require.NoError(t, s.IncrementClicks(ctx, "abc123", clickedAt))

	link, err := s.GetByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.TotalClicks)
	require.NotNil(t, link.LastClickedAt)
	assert.WithinDuration(t, clickedAt, *link.LastClickedAt, time.Second)

	assert.ErrorIs(t, s.IncrementClicks(ctx, "nothere", clickedAt), ErrNotFound)
}

// 并发自增不允许丢更新：N 个并发点击之后计数必须恰好是 N
func TestIncrementClicks_Concurrent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertIfAbsent(ctx, model.NewOwnedLink("abc123", "https://example.com", 1)))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.IncrementClicks(ctx, "abc123", time.Now()))
		}()
	}
	wg.Wait()

	link, err := s.GetByCode(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(n), link.TotalClicks)
}

func TestUpdateOwnership(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	expiry := time.Now().Add(30 * 24 * time.Hour)
	require.NoError(t, s.InsertIfAbsent(ctx, model.NewAnonymousLink("anon01", "https://example.com/1", expiry)))
	require.NoError(t, s.InsertIfAbsent(ctx, model.NewOwnedLink("owned1", "https://example.com/2", 99)))

	// anon01 匿名可认领，owned1 已有归属应被跳过，ghost1 不存在
	count, err := s.UpdateOwnership(ctx, []string{"anon01", "owned1", "ghost1"}, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	claimed, err := s.GetByCode(ctx, "anon01")
	require.NoError(t, err)
	assert.False(t, claimed.IsAnonymous)
	require.NotNil(t, claimed.OwnerID)
	assert.Equal(t, uint(7), *claimed.OwnerID)
	assert.Nil(t, claimed.ExpiresAt, "认领后过期时间应被清除")

	untouched, err := s.GetByCode(ctx, "owned1")
	require.NoError(t, err)
	require.NotNil(t, untouched.OwnerID)
	assert.Equal(t, uint(99), *untouched.OwnerID)

	// 幂等：同样的参数再来一次，没有剩余匿名记录可转
	count, err = s.UpdateOwnership(ctx, []string{"anon01", "owned1", "ghost1"}, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDeleteByCode(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertIfAbsent(ctx, model.NewOwnedLink("abc123", "https://example.com", 1)))
	require.NoError(t, s.DeleteByCode(ctx, "abc123"))

	_, err := s.GetByCode(ctx, "abc123")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.DeleteByCode(ctx, "abc123"), ErrNotFound)
}

func TestListByOwner_Order(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	older := model.NewOwnedLink("older1", "https://example.com/1", 7)
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, s.InsertIfAbsent(ctx, older))

	newer := model.NewOwnedLink("newer1", "https://example.com/2", 7)
	newer.CreatedAt = time.Now()
	require.NoError(t, s.InsertIfAbsent(ctx, newer))

	require.NoError(t, s.InsertIfAbsent(ctx, model.NewOwnedLink("other1", "https://example.com/3", 8)))

	links, err := s.ListByOwner(ctx, 7)
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, "newer1", links[0].Code, "最新创建的排在最前")
	assert.Equal(t, "older1", links[1].Code)
}
