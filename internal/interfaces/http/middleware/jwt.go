package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/estatebook/backend/internal/domain/shared"
	"github.com/estatebook/backend/internal/infrastructure/auth"
	"github.com/estatebook/backend/internal/infrastructure/logger"
	"github.com/estatebook/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by Authenticate
const (
	ActorKey     = "actor"
	JWTClaimsKey = "jwt_claims"
)

const bearerScheme = "Bearer "

var errNoBearer = errors.New("missing bearer token")

// TokenValidator checks an access token and returns its claims
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// Authenticate requires a bearer access token on every request of the group
// it is mounted on. The resolved Actor is stored under ActorKey and on the
// request context, where logger.L picks up the tenant and user.
func Authenticate(tokens TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("auth")

	return func(c *gin.Context) {
		claims, err := verify(tokens, c.GetHeader("Authorization"))
		if err != nil {
			log.Warn("Authentication failed",
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(authFailure(err), c.GetString(logger.RequestIDKey)))
			return
		}
		actor, err := claims.Actor()
		if err != nil {
			log.Warn("Token names no valid tenant", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(authFailure(err), c.GetString(logger.RequestIDKey)))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func verify(tokens TokenValidator, header string) (*auth.Claims, error) {
	token, ok := strings.CutPrefix(header, bearerScheme)
	if !ok || strings.TrimSpace(token) == "" {
		return nil, errNoBearer
	}
	return tokens.ValidateAccessToken(token)
}

// authFailure maps a token error to the API error body. A missing token is
// UNAUTHORIZED; a presented but unusable one is TOKEN_INVALID or TOKEN_EXPIRED.
func authFailure(err error) *dto.ErrorInfo {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return &dto.ErrorInfo{Code: dto.ErrCodeTokenExpired, Message: "Token has expired"}
	case errors.Is(err, errNoBearer):
		return &dto.ErrorInfo{Code: dto.ErrCodeUnauthorized, Message: "Authentication required"}
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidTokenType),
		errors.Is(err, auth.ErrTokenNotYetValid), errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingTenantID):
		return &dto.ErrorInfo{Code: dto.ErrCodeTokenInvalid, Message: "Invalid token"}
	}
	return &dto.ErrorInfo{Code: dto.ErrCodeUnauthorized, Message: "Authentication required"}
}

// GetActor returns the actor resolved by Authenticate
func GetActor(c *gin.Context) (shared.Actor, bool) {
	v, _ := c.Get(ActorKey)
	actor, ok := v.(shared.Actor)
	return actor, ok
}

// GetJWTClaims returns the validated claims, or nil outside Authenticate
func GetJWTClaims(c *gin.Context) *auth.Claims {
	v, _ := c.Get(JWTClaimsKey)
	claims, _ := v.(*auth.Claims)
	return claims
}
