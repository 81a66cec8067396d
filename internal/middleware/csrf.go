package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	inHttp "github.com/prasetya/phoneshop/internal/http"
	"github.com/prasetya/phoneshop/internal/log"
)

const csrfTokenTTL = 4 * time.Hour

// AntiForgery requires every mutating request to echo back a signed token
// bound to the requester's ownerKey. Tokens are handed out by the /csrf
// route; the client adapter passes one in at construction instead of
// scraping it out of a rendered page.
func AntiForgery(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			c := r.Context()
			logger := zerolog.Ctx(c).With().Str(log.KEY_TAG, "middleware AntiForgery").Logger()

			ownerKey := OwnerKeyFromContext(c)
			token := r.Header.Get(inHttp.KEY_HEADER_CSRF_TOKEN)
			if err := VerifyCsrfToken(token, ownerKey, secretKey); err != nil {
				err = fmt.Errorf("failed verifying anti-forgery token with error=%w", err)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusForbidden,
					"message":    err.Error(),
				})
				return
			}
			logger.Trace().Msg("verified anti-forgery token")

			next.ServeHTTP(w, r)
		})
	}
}

func IssueCsrfToken(ownerKey string, secretKey string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   ownerKey,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(csrfTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
}

func VerifyCsrfToken(token string, ownerKey string, secretKey string) error {
	if token == "" {
		return fmt.Errorf("missing anti-forgery token")
	}
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (interface{}, error) { return []byte(secretKey), nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(ownerKey),
	)
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid anti-forgery token")
	}
	return nil
}
