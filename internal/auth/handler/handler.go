package handler

import (
	"net/http"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth/provider"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth/resolver"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/idp"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/logger"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/token"

	"github.com/gin-gonic/gin"
)

// Handler runs the federated sign-in flow: OAuth login/callback against
// the configured providers, identity resolution, then bearer-credential
// issuance through the identity provider.
type Handler struct {
	providers *provider.Registry
	idp       idp.Provider
	resolver  resolver.Resolver
}

func NewHandler(
	registry *provider.Registry,
	identityProvider idp.Provider,
	resolver resolver.Resolver,
) *Handler {
	return &Handler{
		providers: registry,
		idp:       identityProvider,
		resolver:  resolver,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/oauth/login/:provider", h.login)
	r.GET("/oauth/callback/:provider", h.callback)
	r.POST("/auth/logout", h.Logout)
}

func (h *Handler) login(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	state := generateState(c)
	_, codeChallenge := generatePKCE(c)

	authURL := p.AuthCodeURL(state, codeChallenge)
	c.Redirect(http.StatusFound, authURL)
}

func (h *Handler) callback(c *gin.Context) {
	providerName := c.Param("provider")

	p, err := h.providers.Get(providerName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "unknown oauth provider",
		})
		return
	}

	if !validateState(c) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "invalid state",
		})
		return
	}

	errParam := c.Query("error")
	if errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": providerName,
			"error":    errParam,
			"desc":     c.Query("error_description"),
		})
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	codeVerifier := getPKCEVerifier(c)
	if codeVerifier == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "missing pkce verifier",
		})
		return
	}

	identity, err := p.ExchangeCode(
		c.Request.Context(),
		code,
		codeVerifier,
	)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "authentication failed",
		})
		return
	}

	userID, err := h.resolver.Resolve(c.Request.Context(), identity)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to resolve user",
		})
		return
	}

	// Make sure the identity exists at the provider, then mint the
	// bearer credential. The credential mirrors whatever role claim is
	// cached at issuance time; the synchronizer keeps that cache honest.
	if err := h.idp.Register(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to register identity",
		})
		return
	}

	credential, expiresAt, err := h.idp.IssueCredential(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to issue credential",
		})
		return
	}

	token.SetCookie(c.Writer, credential, expiresAt, token.CookieOptions{
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	logger.Info("login succeeded", map[string]any{
		"user_id":  userID,
		"provider": providerName,
		"ip":       c.ClientIP(),
	})

	c.JSON(http.StatusOK, gin.H{
		"status": "authenticated",
	})
}

func (h *Handler) Logout(c *gin.Context) {

	// Best-effort revocation: if the cookie still verifies, invalidate
	// every credential issued to the subject so far.
	cookie, err := c.Request.Cookie(token.CookieName)
	if err == nil && cookie.Value != "" {
		decoded, err := h.idp.VerifyCredential(c.Request.Context(), cookie.Value, false)
		if err == nil {
			_ = h.idp.RevokeCredentials(c.Request.Context(), decoded.SubjectID)
			logger.Info("credentials revoked", map[string]any{
				"user_id": decoded.SubjectID,
				"ip":      c.ClientIP(),
			})
		}
	}

	token.ClearCookie(c.Writer, token.CookieOptions{
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	// Idempotent response
	c.Status(http.StatusNoContent)
}
