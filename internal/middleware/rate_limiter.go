package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ==================== BulkRateLimiter 批量操作限流器 ====================

// BulkRateLimiter 按调用方限制导入 / 导出频率
// 每个 key 一个令牌桶，防止单个管理员反复导入压垮数据库
type BulkRateLimiter struct {
	limit   rate.Limit
	burst   int
	entries sync.Map // key -> *limiterEntry
}

type limiterEntry struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewBulkRateLimiter perMinute 次/分钟，burst 为突发上限
func NewBulkRateLimiter(perMinute, burst int) *BulkRateLimiter {
	if perMinute <= 0 {
		perMinute = 6
	}
	if burst <= 0 {
		burst = 1
	}
	return &BulkRateLimiter{
		limit: rate.Every(time.Minute / time.Duration(perMinute)),
		burst: burst,
	}
}

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Check 消耗一个令牌，不足时返回需要等待的时间
func (r *BulkRateLimiter) Check(key string) CheckResult {
	actual, _ := r.entries.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)})
	entry := actual.(*limiterEntry)

	entry.mu.Lock()
	entry.lastSeen = time.Now()
	entry.mu.Unlock()

	res := entry.limiter.Reserve()
	if !res.OK() {
		return CheckResult{Allowed: false, RetryAfter: time.Minute}
	}
	if delay := res.Delay(); delay > 0 {
		// 不排队，归还令牌
		res.Cancel()
		return CheckResult{Allowed: false, RetryAfter: delay}
	}
	return CheckResult{Allowed: true}
}

// Reset 重置指定 key
func (r *BulkRateLimiter) Reset(key string) {
	r.entries.Delete(key)
}

// Cleanup 清理 idle 时间内未访问的 key，返回清理数量
func (r *BulkRateLimiter) Cleanup(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)
	removed := 0
	r.entries.Range(func(key, value interface{}) bool {
		entry := value.(*limiterEntry)
		entry.mu.Lock()
		stale := entry.lastSeen.Before(cutoff)
		entry.mu.Unlock()
		if stale {
			r.entries.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// ==================== Gin 中间件 ====================

// BulkRateLimit 批量操作限流中间件
// 已认证按用户限流，否则按客户端 IP
//
// 使用示例:
//
//	limiter := middleware.NewBulkRateLimiter(6, 3)
//	api.POST("/products/import", middleware.BulkRateLimit(limiter, "import"), ctl.ImportProducts)
func BulkRateLimit(limiter *BulkRateLimiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		result := limiter.Check(BulkKey(c, action))
		if !result.Allowed {
			seconds := int(math.Ceil(result.RetryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"code":    429,
				"message": formatRetryMessage(seconds),
				"data": gin.H{
					"retry_after": seconds,
					"action":      action,
				},
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// BulkKey 限流 key
func BulkKey(c *gin.Context, action string) string {
	if userID := GetUserID(c); userID > 0 {
		return fmt.Sprintf("user:%d:%s", userID, action)
	}
	return fmt.Sprintf("ip:%s:%s", c.ClientIP(), action)
}

func formatRetryMessage(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("操作过于频繁，请 %d 秒后重试", seconds)
	}
	minutes := seconds / 60
	if rest := seconds % 60; rest > 0 {
		return fmt.Sprintf("操作过于频繁，请 %d 分 %d 秒后重试", minutes, rest)
	}
	return fmt.Sprintf("操作过于频繁，请 %d 分钟后重试", minutes)
}
