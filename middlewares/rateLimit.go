package middlewares

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type limiterStore struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	b        int
}

func (s *limiterStore) get(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, exists := s.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(s.r, s.b)
		s.limiters[key] = limiter
	}
	return limiter
}

// RateLimitMiddleware allows r requests per second with burst b for each key.
// Every call owns its own limiters, so routes never share a budget.
func RateLimitMiddleware(r rate.Limit, b int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	store := &limiterStore{limiters: make(map[string]*rate.Limiter), r: r, b: b}

	return func(c *gin.Context) {
		if !store.get(keyFunc(c)).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down"})
			return
		}

		c.Next()
	}
}
