package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/access"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/middleware"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/store"
)

// GetCareerPlan serves a user's stored career plan under the same access
// decision as the profile itself. The plan content is opaque here; this
// service never generates or edits it.
func (h *Handler) GetCareerPlan(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, auth.ErrUnauthenticated)
		return
	}

	ownerID := c.Param("id")
	level := access.Decide(caller, ownerID)
	if level == access.Denied {
		respondError(c, auth.ErrForbidden)
		return
	}

	plan, err := h.plans.GetPlan(c.Request.Context(), ownerID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, auth.ErrNotFound)
		return
	}
	if err != nil {
		respondError(c, auth.ErrUpstream)
		return
	}

	content := json.RawMessage(plan.Content)

	if level == access.OwnerAccess {
		c.JSON(http.StatusOK, gin.H{
			"user_id":    plan.UserID,
			"content":    content,
			"updated_at": plan.UpdatedAt,
		})
		return
	}

	// Recruiters get the read-only projection without edit metadata.
	c.JSON(http.StatusOK, gin.H{
		"user_id":   plan.UserID,
		"content":   content,
		"read_only": true,
	})
}
