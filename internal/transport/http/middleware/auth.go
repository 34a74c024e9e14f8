package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	ctxlog "github.com/tabletophq/groupfinder/internal/log"
	"github.com/tabletophq/groupfinder/internal/usecase"
)

const (
	// UserIDKey holds the authenticated user's id (int64) in the gin context.
	UserIDKey = "userID"
	// SessionJTIKey holds the token's jti so logout can revoke exactly
	// the session that authenticated the request.
	SessionJTIKey = "sessionJTI"
)

// SessionChecker is the revocation lookup — satisfied by the session repository.
type SessionChecker interface {
	Exists(ctx context.Context, tokenHash string) (bool, error)
}

// Auth validates a Bearer HS256 JWT and requires that the session row
// behind its jti still exists. A signed token whose session was deleted
// (logout) is rejected like any other bad token.
func Auth(jwtKey []byte, sessions SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c)
			return
		}

		rawToken := strings.TrimPrefix(header, "Bearer ")

		token, err := jwt.Parse(rawToken, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			unauthorized(c)
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c)
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := strconv.ParseInt(sub, 10, 64)
		if err != nil || userID <= 0 {
			unauthorized(c)
			return
		}

		jti, ok := claims["jti"].(string)
		if !ok || jti == "" {
			unauthorized(c)
			return
		}

		live, err := sessions.Exists(c.Request.Context(), usecase.HashSessionID(jti))
		if err != nil || !live {
			unauthorized(c)
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(SessionJTIKey, jti)
		c.Request = c.Request.WithContext(ctxlog.WithActor(c.Request.Context(), userID))
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    "BAD_REQUEST",
		"status":  http.StatusUnauthorized,
		"message": "Unauthorized",
	})
}
