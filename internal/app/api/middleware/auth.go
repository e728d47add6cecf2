package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"go.uber.org/zap"

	"github.com/fatflowers/hubreport/pkg/logctx"
	"github.com/fatflowers/hubreport/pkg/response"
)

// AdminClaims identifies the operator calling an admin endpoint.
type AdminClaims struct {
	jwt.StandardClaims
	Role string `json:"role"`
}

const RoleAdmin = "admin"

// AdminAuthMiddleware requires an HS256 bearer token signed with secret and
// carrying the admin role. An empty secret disables the check, for local runs.
func AdminAuthMiddleware(secret string, base *zap.SugaredLogger) gin.HandlerFunc {
	if secret == "" {
		base.Warnw("admin jwt secret not configured, admin routes are unauthenticated")
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(secret)
	return func(c *gin.Context) {
		claims, err := parseAdminToken(c.GetHeader("Authorization"), key)
		if err != nil {
			logctx.FromGin(c, base).Warnw("admin request rejected", "err", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
			return
		}
		c.Set("admin", claims.Subject)
		c.Next()
	}
}

func parseAdminToken(header string, key []byte) (*AdminClaims, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return nil, fmt.Errorf("missing bearer token")
	}
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Role != RoleAdmin {
		return nil, fmt.Errorf("token does not grant admin access")
	}
	return claims, nil
}

// SignAdminToken issues a token accepted by AdminAuthMiddleware.
func SignAdminToken(secret, subject string, expiresAt int64) (string, error) {
	claims := AdminClaims{
		StandardClaims: jwt.StandardClaims{Subject: subject, ExpiresAt: expiresAt},
		Role:           RoleAdmin,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
