// Package api serves the protected resource surface: profile lookup,
// career-plan lookup, candidate listing and the claims-sync triggers.
// Every route authenticates through the full-verification middleware and
// authorizes through the access package. No handler re-derives access
// logic on its own.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/claimsync"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/middleware"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/store"
)

type Config struct {
	// DevListOverride lets non-recruiters hit the candidate listing in
	// development mode.
	DevListOverride bool

	// PageSize caps candidate listing responses.
	PageSize int
}

type Handler struct {
	profiles store.ProfileStore
	plans    store.PlanStore
	sync     *claimsync.Synchronizer
	cfg      Config
}

func NewHandler(
	profiles store.ProfileStore,
	plans store.PlanStore,
	sync *claimsync.Synchronizer,
	cfg Config,
) *Handler {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	return &Handler{
		profiles: profiles,
		plans:    plans,
		sync:     sync,
		cfg:      cfg,
	}
}

// RegisterRoutes mounts the resource routes on an already-authenticated
// route group and the admin triggers on the internal group.
func (h *Handler) RegisterRoutes(api, internal *gin.RouterGroup) {
	api.GET("/me", h.Me)
	api.GET("/profiles/:id", h.GetProfile)
	api.GET("/profiles/:id/career-plan", h.GetCareerPlan)
	api.GET("/candidates", h.ListCandidates)
	api.GET("/users", h.LookupUsers)

	internal.POST("/claims/sync", h.SyncAllClaims)
	internal.POST("/claims/sync/:id", h.SyncOneClaims)
}

// Me echoes the verified caller identity.
func (h *Handler) Me(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, auth.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id": caller.ID,
		"role":    caller.Role,
	})
}

func respondError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(auth.StatusFor(err), gin.H{
		"error": auth.Reason(err),
	})
}
