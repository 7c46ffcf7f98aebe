package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/claimsync"
)

type syncAllRequest struct {
	Secret string `json:"secret"`
}

// SyncAllClaims triggers the bulk role→claims sync. Outside development
// mode the request body must carry the shared secret; the synchronizer
// rejects the whole run before touching any record otherwise.
func (h *Handler) SyncAllClaims(c *gin.Context) {
	var req syncAllRequest
	// Body is optional in development mode.
	_ = c.ShouldBindJSON(&req)

	report, err := h.sync.SyncAll(c.Request.Context(), req.Secret)
	if errors.Is(err, auth.ErrUnauthorized) {
		respondError(c, auth.ErrUnauthorized)
		return
	}
	if err != nil {
		respondError(c, auth.ErrUpstream)
		return
	}

	c.JSON(http.StatusOK, report)
}

type syncOneRequest struct {
	Secret string `json:"secret"`
	Role   string `json:"role"`
}

// SyncOneClaims syncs a single user's role claim, optionally forcing a
// desired role instead of reading the profile. The shared-secret gate
// applies exactly as on the bulk trigger; a single record is no less a
// privilege boundary than the whole batch.
func (h *Handler) SyncOneClaims(c *gin.Context) {
	var req syncOneRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.sync.Authorize(req.Secret); err != nil {
		respondError(c, auth.ErrUnauthorized)
		return
	}

	result := h.sync.SyncOne(c.Request.Context(), c.Param("id"), req.Role)

	status := http.StatusOK
	if result.Status == claimsync.StatusError {
		status = http.StatusBadGateway
	}
	c.JSON(status, result)
}
