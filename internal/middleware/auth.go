package middleware

import (
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/volunteerhub/auth-service/internal/security"
)

// HeaderUserID carries the verified subject to downstream handlers and is
// mirrored on the response.
const HeaderUserID = "X-User-Id"

const bearerPrefix = "Bearer "

// Auth gates protected handlers behind bearer-token verification. Requests
// without a valid token are rejected with 401 and never reach the wrapped
// handler. The middleware only consumes previously issued tokens; it never
// raises password-related errors.
func Auth(verifier security.TokenVerifier, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, err := verifier.Verify(tokenString)
			if err != nil {
				logger.Warn("rejected bearer token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set(HeaderUserID, claims.Subject)
			ctx.Response.Header.Set(HeaderUserID, claims.Subject)

			next(ctx)
		}
	}
}

// extractToken returns the bearer token from the Authorization header. The
// "Bearer " prefix match is case-sensitive.
func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if !strings.HasPrefix(header, bearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, bearerPrefix)
}
