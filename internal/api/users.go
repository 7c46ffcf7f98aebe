package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/access"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/middleware"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/store"
)

// LookupUsers serves the recruiter-facing user search. The field name is
// passed straight through to the store, which enforces its whitelist; a
// rejected field is a client error, not an upstream failure. Results use
// the same reduced projection as the candidate directory.
func (h *Handler) LookupUsers(c *gin.Context) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		respondError(c, auth.ErrUnauthenticated)
		return
	}

	if !access.CanListCandidates(caller, h.cfg.DevListOverride) {
		respondError(c, auth.ErrForbidden)
		return
	}

	field := c.Query("field")
	value := c.Query("value")
	if field == "" || value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field and value are required"})
		return
	}

	pageSize := h.cfg.PageSize
	if raw := c.Query("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n < pageSize {
			pageSize = n
		}
	}

	records, err := h.profiles.Query(c.Request.Context(), field, value, pageSize)
	if errors.Is(err, store.ErrNotQueryable) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "field is not queryable"})
		return
	}
	if err != nil {
		respondError(c, auth.ErrUpstream)
		return
	}

	out := make([]recruiterProfile, 0, len(records))
	for i := range records {
		out = append(out, recruiterProfileFrom(&records[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": out,
		"count": len(out),
	})
}
