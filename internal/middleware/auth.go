package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/token"
)

const callerContextKey = "auth.caller"

// ExtractCredential pulls the raw bearer credential from the
// Authorization header, falling back to the credential cookie.
func ExtractCredential(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}

	cookie, err := r.Cookie(token.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// CallerFrom returns the verified caller attached by RequireIdentity.
func CallerFrom(c *gin.Context) (auth.Caller, bool) {
	v, ok := c.Get(callerContextKey)
	if !ok {
		return auth.Caller{}, false
	}
	caller, ok := v.(auth.Caller)
	return caller, ok
}

// RequireIdentity gates a route on full cryptographic verification of
// the bearer credential. Every protected resource goes through this;
// the structural tier below never substitutes for it.
func RequireIdentity(validator *token.Validator, forceFresh bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ExtractCredential(c.Request)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": auth.Reason(auth.ErrUnauthenticated),
			})
			return
		}

		caller, err := validator.Verify(c.Request.Context(), raw, forceFresh)
		if err != nil {
			c.AbortWithStatusJSON(auth.StatusFor(err), gin.H{
				"error": auth.Reason(err),
			})
			return
		}

		c.Set(callerContextKey, *caller)
		c.Next()
	}
}

// RequireCredentialShape is the cheap pre-filter for browser page
// routes: it only checks that a structurally plausible credential is
// present and redirects to the login page otherwise. It asserts no
// identity, so routes behind it must still verify fully before serving
// any protected data.
func RequireCredentialShape(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ExtractCredential(c.Request)
		if !token.Structural(raw) {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}
