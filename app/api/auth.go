package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Quiz-Night-Club/quiz-engine/app/shared/types"
)

type contextKey string

const claimsContextKey contextKey = "api.claims"

// Role separates who may drive the session from who may only buzz.
const (
	RoleOrganizer = "organizer"
	RolePlayer    = "player"
)

// Claims is the verified identity attached to every request.
type Claims struct {
	GameID   types.GameID
	PlayerID types.PlayerID
	Role     string
}

// ClaimsFromContext returns the verified claims, or false outside the auth
// middleware.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(Claims)
	return claims, ok
}

// IssueToken signs a token for one participant of one game. Used by the join
// flow and by tests.
func IssueToken(secret string, claims Claims, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"game_id":   claims.GameID.String(),
		"player_id": string(claims.PlayerID),
		"role":      claims.Role,
		"exp":       time.Now().Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}

func parseToken(secret, tokenString string) (Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, fmt.Errorf("invalid token claims")
	}

	rawGameID, _ := mapClaims["game_id"].(string)
	gameID, err := types.ParseGameID(rawGameID)
	if err != nil {
		return Claims{}, fmt.Errorf("invalid game_id claim: %w", err)
	}

	playerID, _ := mapClaims["player_id"].(string)
	role, _ := mapClaims["role"].(string)
	if role != RoleOrganizer && role != RolePlayer {
		return Claims{}, fmt.Errorf("unknown role %q", role)
	}

	return Claims{
		GameID:   gameID,
		PlayerID: types.PlayerID(playerID),
		Role:     role,
	}, nil
}

// authMiddleware verifies the bearer token and stores the claims on the
// request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			s.respondError(w, r, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := parseToken(s.cfg.JWT.Secret, tokenString)
		if err != nil {
			s.respondError(w, r, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole refuses requests whose token carries a different role.
func (s *Server) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || claims.Role != role {
				s.respondError(w, r, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
