package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminIDKey contextKey = "adminID"

// AdminClaims is the token payload for the admin API.
type AdminClaims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

var errNoSubject = errors.New("token has no user id")

// AdminAuth accepts HS256 bearer tokens whose user id is still an admin.
// With no secret configured every request is refused.
func AdminAuth(secret string, isAdmin func(int64) bool) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(key) == 0 {
				http.Error(w, "Admin API disabled", http.StatusServiceUnavailable)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			userID, err := validateToken(parts[1], key)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}
			if !isAdmin(userID) {
				http.Error(w, "Admin access required", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), adminIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func validateToken(tokenString string, key []byte) (int64, error) {
	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if claims.UserID == 0 {
		return 0, errNoSubject
	}
	return claims.UserID, nil
}

// AdminID is the authenticated admin on a request that passed AdminAuth.
func AdminID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(adminIDKey).(int64)
	return id, ok
}

// IssueAdminToken signs a token for userID that expires after ttl.
func IssueAdminToken(secret string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
