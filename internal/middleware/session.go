package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	inErrors "github.com/prasetya/phoneshop/internal/errors"
	inHttp "github.com/prasetya/phoneshop/internal/http"
	"github.com/prasetya/phoneshop/internal/log"
)

// SessionCookie carries the signed anonymous session token. An authenticated
// request instead presents a bearer token whose subject is the user id;
// exactly one of the two identities ever binds the cart.
const SessionCookie = "phoneshop_session"

const (
	ownerKeyUserPrefix = "user:"
	ownerKeyAnonPrefix = "anon:"
)

type ownerKeyCtx struct{}

func OwnerKeyFromContext(c context.Context) string {
	key, ok := c.Value(ownerKeyCtx{}).(string)
	if !ok {
		return ""
	}
	return key
}

func attachOwnerKeyToContext(c context.Context, ownerKey string) context.Context {
	return context.WithValue(c, ownerKeyCtx{}, ownerKey)
}

// Session resolves the ownerKey for every request. A valid bearer token wins;
// otherwise the anonymous session cookie is verified or a new one is minted.
func Session(secretKey string, maxAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := r.Context()
			logger := zerolog.Ctx(c).With().Str(log.KEY_TAG, "middleware Session").Logger()

			authorization := r.Header.Get("Authorization")
			if authorization != "" {
				token := strings.TrimPrefix(authorization, "Bearer ")
				subject, err := verifySessionToken(token, secretKey)
				if err != nil {
					err = fmt.Errorf("failed verifying bearer token with error=%w", err)
					logger.Error().Err(err).Msg(err.Error())
					inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
						"status":     "failed",
						"statusCode": http.StatusUnauthorized,
						"message":    err.Error(),
						"errorKind":  inErrors.KindUnauthorized,
					})
					return
				}
				ownerKey := ownerKeyUserPrefix + subject
				logger = logger.With().Str(log.KEY_OWNER_KEY, ownerKey).Logger()
				logger.Trace().Msg("resolved ownerKey from bearer token")
				c = attachOwnerKeyToContext(logger.WithContext(c), ownerKey)
				next.ServeHTTP(w, r.WithContext(c))
				return
			}

			ownerKey := ""
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				subject, err := verifySessionToken(cookie.Value, secretKey)
				if err != nil {
					logger.Info().Err(err).Msg("stale session cookie, reissuing")
				} else {
					ownerKey = ownerKeyAnonPrefix + subject
				}
			}
			if ownerKey == "" {
				sessionId := uuid.NewString()
				token, err := IssueSessionToken(sessionId, secretKey, maxAge)
				if err != nil {
					err = fmt.Errorf("failed issuing session token with error=%w", err)
					logger.Error().Err(err).Msg(err.Error())
					inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
						"status":     "failed",
						"statusCode": http.StatusInternalServerError,
						"message":    err.Error(),
					})
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    token,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				ownerKey = ownerKeyAnonPrefix + sessionId
			}

			logger = logger.With().Str(log.KEY_OWNER_KEY, ownerKey).Logger()
			logger.Trace().Msg("resolved ownerKey from session cookie")
			c = attachOwnerKeyToContext(logger.WithContext(c), ownerKey)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}

func IssueSessionToken(subject string, secretKey string, maxAge time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
}

func verifySessionToken(token string, secretKey string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return "", fmt.Errorf("failed parsing session token with error=%w", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid session token")
	}
	return claims.Subject, nil
}
