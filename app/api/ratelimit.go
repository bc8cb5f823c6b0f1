package api

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

// buzzerLimiter bounds buzzer presses per player so a held-down key cannot
// flood the race.
type buzzerLimiter struct {
	mu       sync.Mutex
	limiters map[types.PlayerID]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newBuzzerLimiter(rps float64, burst int) *buzzerLimiter {
	return &buzzerLimiter{
		limiters: map[types.PlayerID]*rate.Limiter{},
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *buzzerLimiter) allow(playerID types.PlayerID) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[playerID]
	if !ok {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[playerID] = limiter
	}
	l.mu.Unlock()

	return limiter.Allow()
}

// rateLimitMiddleware keys the limiter on the token's player id, so one
// spamming player never slows the rest of the room.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			s.respondError(w, r, http.StatusUnauthorized, "missing claims")
			return
		}
		if !s.limiter.allow(claims.PlayerID) {
			s.respondError(w, r, http.StatusTooManyRequests, "buzzer rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
