package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/web"
)

type ctxKey struct{}

// maxPeek bounds how much of a JSON body is buffered when looking for _token.
const maxPeek = 1 << 20

// ClaimsFrom returns the claims Authenticate stored on ctx.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// Authenticate verifies the request's token, if any, and stores its claims
// in the context. Requests without a valid token pass through untouched;
// guards such as RequireUser decide what needs one.
func Authenticate(tokens *TokenService, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFrom(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.Parse(raw)
			if err != nil {
				logger.Debugw("ignoring token", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}

// RequireUser rejects the request with 401 unless the token belongs to the
// user named by the {param} path value.
func RequireUser(param string, logger *zap.SugaredLogger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFrom(r.Context())
		if !ok || c.Username != r.PathValue(param) {
			web.WriteError(w, logger, apperror.NewUnauthorized(nil), http.StatusNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// tokenFrom looks in the Authorization header, then the _token query
// parameter, then a _token field of a JSON body.
func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if t := r.URL.Query().Get("_token"); t != "" {
		return t
	}
	if r.Body == nil || !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return ""
	}
	b, err := io.ReadAll(io.LimitReader(r.Body, maxPeek))
	r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(b), r.Body))
	if err != nil {
		return ""
	}
	var body struct {
		Token string `json:"_token"`
	}
	if json.Unmarshal(b, &body) != nil {
		return ""
	}
	return body.Token
}
