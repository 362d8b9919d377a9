package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	cdomain "github.com/haythamforever/HonorHub/internal/catalog/domain"
)

const (
	ctxUserIDKey = "auth_user_id"
	ctxSenderKey = "auth_sender"

	cookieName = "honorhub_access_token"
)

// SenderLookup resolves the user named by a token's subject.
type SenderLookup interface {
	GetSender(ctx context.Context, id int64) (cdomain.Sender, error)
}

// NewJWT returns an Echo middleware that validates access JWTs, loads the
// sending user and stores both the ID and the Sender in the context.
func NewJWT(signingKey string, users SenderLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")

			// If no Authorization header, fall back to cookie-based session token
			if auth == "" {
				if cookie, err := c.Cookie(cookieName); err == nil && cookie != nil && cookie.Value != "" {
					auth = "Bearer " + cookie.Value
				}
			}

			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			tokStr := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(tokStr, func(token *jwt.Token) (any, error) {
				return []byte(signingKey), nil
			}, jwt.WithLeeway(30*time.Second), jwt.WithIssuedAt(), jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			sub, err := tok.Claims.GetSubject()
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid claims"})
			}
			uid, err := strconv.ParseInt(sub, 10, 64)
			if err != nil || uid <= 0 {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid subject"})
			}

			sender, err := users.GetSender(c.Request().Context(), uid)
			if errors.Is(err, cdomain.ErrNotFound) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unknown user"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "user lookup failed"})
			}

			c.Set(ctxUserIDKey, uid)
			c.Set(ctxSenderKey, sender)
			return next(c)
		}
	}
}

// RequireAdmin rejects requests whose sender is not an admin. It must run after NewJWT.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, ok := CurrentSender(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		}
		if !s.IsAdmin() {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		return next(c)
	}
}

// UserID returns the authenticated user's ID from context.
func UserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(ctxUserIDKey).(int64)
	return id, ok
}

// CurrentSender returns the authenticated Sender from context.
func CurrentSender(c echo.Context) (cdomain.Sender, bool) {
	s, ok := c.Get(ctxSenderKey).(cdomain.Sender)
	return s, ok
}

// SignToken issues an HS256 access token for userID. Used by honorctl and tests.
func SignToken(signingKey string, userID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    "honorhub",
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
}
