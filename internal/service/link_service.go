package service

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"shortlink-platform/internal/model"
	"shortlink-platform/internal/shortcode"
	"shortlink-platform/internal/store"
)

const (
	defaultAnonymousTTL = 30 * 24 * time.Hour
	defaultMaxAttempts  = 5
	defaultCacheTTL     = 24 * time.Hour
	defaultStoreTimeout = 3 * time.Second
	cacheTimeout        = 1 * time.Second
)

// Options 链接策略配置，零值字段使用默认值
type Options struct {
	AnonymousTTL time.Duration // 匿名链接的有效期
	MaxAttempts  int           // 随机短码冲突时的最大重试次数
	CacheTTL     time.Duration // Redis 缓存时长上限
	StoreTimeout time.Duration // 单次存储调用的超时
}

// LinkService 短链接核心服务：短码分配、解析计数、归属转移。
// 服务本身无状态，共享状态全部在注入的 LinkStore 里。
type LinkService struct {
	store  store.LinkStore
	redis  *redis.Client
	clock  Clock
	logger *zap.SugaredLogger
	opts   Options
}

// NewLinkService 创建服务实例，redis 允许为 nil（降级为直查存储）
func NewLinkService(linkStore store.LinkStore, redisClient *redis.Client, clock Clock, logger *zap.SugaredLogger, opts Options) *LinkService {
	if opts.AnonymousTTL <= 0 {
		opts.AnonymousTTL = defaultAnonymousTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = defaultStoreTimeout
	}
	return &LinkService{
		store:  linkStore,
		redis:  redisClient,
		clock:  clock,
		logger: logger.Named("link_service"),
		opts:   opts,
	}
}

// Create 创建短链接。requestedCode 为空时随机生成并在冲突时重试；
// ownerID 为 nil 时创建匿名链接，带 30 天有效期。
func (s *LinkService) Create(ctx context.Context, targetURL, requestedCode string, ownerID *uint) (*model.Link, error) {
	if !validTargetURL(targetURL) {
		return nil, ErrInvalidTargetURL
	}

	if requestedCode != "" {
		if !shortcode.Valid(requestedCode) {
			return nil, ErrInvalidCodeFormat
		}
		link := s.newLink(requestedCode, targetURL, ownerID)
		if err := s.insert(ctx, link); err != nil {
			// 自定义短码冲突直接返回，让用户换一个
			return nil, err
		}
		return link, nil
	}

	// 随机短码：生成和占用合成一步原子插入，冲突就换一个重新抽
	for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
		code, err := shortcode.Generate()
		if err != nil {
			return nil, err
		}
		link := s.newLink(code, targetURL, ownerID)
		err = s.insert(ctx, link)
		if err == nil {
			return link, nil
		}
		if errors.Is(err, store.ErrCodeExists) {
			continue
		}
		return nil, err
	}
	s.logger.Warnf("随机短码重试 %d 次仍冲突", s.opts.MaxAttempts)
	return nil, ErrAllocationExhausted
}

// Resolve 解析短码并原子地记一次点击。
// 过期和缺失不计数也不改动记录，分别以 ErrExpired / store.ErrNotFound 返回。
func (s *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	if target, ok := s.cacheGet(ctx, code); ok {
		// 缓存只存未过期且校验过的目标地址，命中后计数仍走存储层的原子自增
		err := s.increment(ctx, code)
		if err == nil {
			return target, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		// 记录已被删除，清缓存走一遍完整查询
		s.cacheDel(ctx, code)
	}

	link, err := s.get(ctx, code)
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	if link.ExpiredAt(now) {
		return "", ErrExpired
	}
	if !validTargetURL(link.TargetURL) {
		s.logger.Errorf("短码 %s 存储的目标地址非法: %s", code, link.TargetURL)
		return "", ErrInvalidStoredURL
	}

	if err := s.increment(ctx, code); err != nil {
		return "", err
	}

	s.cacheSet(ctx, link, now)
	return link.TargetURL, nil
}

// Inspect 诊断读取：只查不改，过期与否交给调用方判断
func (s *LinkService) Inspect(ctx context.Context, code string) (*model.Link, error) {
	return s.get(ctx, code)
}

// Claim 把仍为匿名的短码批量转给 ownerID 并清除过期时间。
// 尽力而为：已有归属或不存在的短码被跳过，返回实际转移条数。
// 重复调用是幂等的，第二次找不到匿名记录，返回 0。
func (s *LinkService) Claim(ctx context.Context, codes []string, ownerID uint) (int64, error) {
	if len(codes) == 0 {
		return 0, ErrInvalidRequest
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	count, err := s.store.UpdateOwnership(ctx, codes, ownerID)
	if err != nil {
		return 0, err
	}

	for _, code := range codes {
		s.cacheDel(ctx, code)
	}
	return count, nil
}

// Delete 删除短码记录。归属校验由调用层在此之前完成。
func (s *LinkService) Delete(ctx context.Context, code string) error {
	s.cacheDel(ctx, code)
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.store.DeleteByCode(ctx, code)
}

// ListByOwner 返回某用户的链接，按创建时间倒序。
// 匿名调用方（ownerID 为 nil）拿到空列表而不是错误。
func (s *LinkService) ListByOwner(ctx context.Context, ownerID *uint) ([]model.Link, error) {
	if ownerID == nil {
		return []model.Link{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.store.ListByOwner(ctx, *ownerID)
}

func (s *LinkService) newLink(code, targetURL string, ownerID *uint) *model.Link {
	if ownerID != nil {
		return model.NewOwnedLink(code, targetURL, *ownerID)
	}
	return model.NewAnonymousLink(code, targetURL, s.clock.Now().Add(s.opts.AnonymousTTL))
}

func (s *LinkService) insert(ctx context.Context, link *model.Link) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.store.InsertIfAbsent(ctx, link)
}

func (s *LinkService) get(ctx context.Context, code string) (*model.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.store.GetByCode(ctx, code)
}

func (s *LinkService) increment(ctx context.Context, code string) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.StoreTimeout)
	defer cancel()
	return s.store.IncrementClicks(ctx, code, s.clock.Now())
}

func (s *LinkService) cacheGet(ctx context.Context, code string) (string, bool) {
	if s.redis == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	target, err := s.redis.Get(ctx, cacheKey(code)).Result()
	if err != nil {
		return "", false
	}
	return target, true
}

func (s *LinkService) cacheSet(ctx context.Context, link *model.Link, now time.Time) {
	if s.redis == nil {
		return
	}
	// 缓存时长不超过剩余有效期，保证命中的一定是未过期链接
	ttl := s.opts.CacheTTL
	if link.ExpiresAt != nil {
		if remain := link.ExpiresAt.Sub(now); remain < ttl {
			ttl = remain
		}
	}
	if ttl <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	s.redis.Set(ctx, cacheKey(link.Code), link.TargetURL, ttl)
}

func (s *LinkService) cacheDel(ctx context.Context, code string) {
	if s.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	s.redis.Del(ctx, cacheKey(code))
}

func cacheKey(code string) string {
	return "shortlink:" + code
}

// validTargetURL 校验目标地址是 http/https 的绝对 URL
func validTargetURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
