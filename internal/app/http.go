package app

import (
	"context"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/api"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth/handler"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth/provider"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth/provider/google"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth/provider/keycloak"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth/resolver"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/claimsync"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/config"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/idp/local"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/middleware"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/store"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/token"

	"github.com/gin-gonic/gin"
)

// dashboardPage is the static page shell. It holds no protected data;
// everything it renders is fetched from /api with full verification.
const dashboardPage = `<!DOCTYPE html>
<html>
<head><title>PivotAI</title></head>
<body>
<div id="app" data-profile-endpoint="/api/me"></div>
</body>
</html>
`

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	identityProvider, err := local.New(infra.Redis.Client, local.Config{
		Secret:   cfg.TokenSecret,
		Issuer:   cfg.TokenIssuer,
		Audience: cfg.TokenAudience,
		TTL:      cfg.TokenTTL,
	})
	if err != nil {
		return nil, nil, err
	}

	validator := token.NewValidator(identityProvider)
	profileStore := store.NewPostgresStore(infra.DB)
	identityResolver := resolver.NewDBResolver(infra.DB)

	synchronizer := claimsync.New(profileStore, identityProvider, claimsync.Config{
		SecretHash: cfg.SyncSecretHash,
		DevMode:    cfg.Development(),
		Workers:    cfg.SyncWorkers,
		PageSize:   cfg.ListPageSize,
	})

	googleProvider, err := google.New(
		ctx,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
	)
	if err != nil {
		return nil, nil, err
	}

	keycloakProvider, err := keycloak.New(
		ctx,
		cfg.KeycloakIssuer,
		cfg.KeycloakClientID,
		cfg.KeycloakRedirectURL,
		cfg.KeycloakPublicBaseURL,
	)
	if err != nil {
		return nil, nil, err
	}

	registry := provider.NewRegistry(
		googleProvider,
		keycloakProvider,
	)

	authHandler := handler.NewHandler(
		registry,
		identityProvider,
		identityResolver,
	)

	apiHandler := api.NewHandler(profileStore, profileStore, synchronizer, api.Config{
		DevListOverride: cfg.Development(),
		PageSize:        cfg.ListPageSize,
	})

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	// Full cryptographic verification with a forced freshness check
	// gates every resource route; the structural tier never does.
	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.RequireIdentity(validator, true))

	// The sync triggers carry their own secret gate, applied inside the
	// synchronizer before any record is touched.
	internalGroup := router.Group("/internal")

	apiHandler.RegisterRoutes(apiGroup, internalGroup)

	// ----------------------------
	// Protected Web Routes
	// ----------------------------

	// Structural check is a redirect-if-absent convenience only; the
	// page shell holds no protected data and everything it renders is
	// fetched through /api with full verification.
	web := router.Group("/")
	web.Use(middleware.RequireCredentialShape("/login"))

	web.GET("/dashboard", func(c *gin.Context) {
		c.Data(200, "text/html; charset=utf-8", []byte(dashboardPage))
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		if err := infra.Redis.Close(); err != nil {
			return err
		}
		return infra.DB.Close()
	}, nil
}
