package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/access"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/middleware"
)

// ListCandidates serves the recruiter-facing candidate directory. The
// underlying query is always bounded; page_size may shrink a page but
// never grow it past the configured ceiling.
func (h *Handler) ListCandidates(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, auth.ErrUnauthenticated)
		return
	}

	if !access.CanListCandidates(caller, h.cfg.DevListOverride) {
		respondError(c, auth.ErrForbidden)
		return
	}

	pageSize := h.cfg.PageSize
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < pageSize {
			pageSize = n
		}
	}

	records, err := h.profiles.ListCandidates(c.Request.Context(), pageSize)
	if err != nil {
		respondError(c, auth.ErrUpstream)
		return
	}

	out := make([]recruiterProfile, 0, len(records))
	for i := range records {
		out = append(out, recruiterProfileFrom(&records[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"candidates": out,
		"count":      len(out),
	})
}
