package middleware

import (
	"net/http"
	"shortlink-platform/internal/config"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimit 全局限流中间件。
// 有 Redis 时按客户端 IP 做固定窗口计数（多实例共享配额），
// 否则退化为进程内的令牌桶。
func RateLimit(redisClient *redis.Client, limitConfig *config.Limit) gin.HandlerFunc {
	if !limitConfig.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	// 基于内存的兜底限流器
	limiter := rate.NewLimiter(rate.Limit(float64(limitConfig.Requests)/60), int(limitConfig.Burst))
	var mu sync.Mutex

	return func(c *gin.Context) {
		// 跳过特定路径
		for _, path := range limitConfig.SkipPaths {
			if strings.HasPrefix(c.Request.URL.Path, path) {
				c.Next()
				return
			}
		}

		if redisClient != nil {
			key := "ratelimit:" + c.ClientIP()
			count, err := redisClient.Incr(c.Request.Context(), key).Result()
			if err == nil {
				if count == 1 {
					redisClient.Expire(c.Request.Context(), key, time.Minute)
				}
				if count > limitConfig.Requests {
					tooMany(c)
					return
				}
				c.Next()
				return
			}
			// Redis 出错时落回内存限流，不中断服务
		}

		mu.Lock()
		allowed := limiter.Allow()
		mu.Unlock()
		if !allowed {
			tooMany(c)
			return
		}
		c.Next()
	}
}

func tooMany(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error": "请求过于频繁，请稍后再试",
	})
	c.Abort()
}
