package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/storefront/auth"
)

const IdentityContextKey = "identity"

// Session resolves the session token of every request into an auth.Identity.
// The bearer header wins over the cookie; a bad token yields an anonymous
// identity and never fails the request.
func Session(resolver *auth.Resolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if v, err := c.Cookie(cookieName); err == nil {
				token = strings.TrimSpace(v)
			}
		}

		c.Set(IdentityContextKey, resolver.Resolve(token))
		c.Next()
	}
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetIdentity returns the identity stored by Session, or anonymous.
func GetIdentity(c *gin.Context) auth.Identity {
	val, exists := c.Get(IdentityContextKey)
	if !exists {
		return auth.Identity{}
	}
	id, _ := val.(auth.Identity)
	return id
}
