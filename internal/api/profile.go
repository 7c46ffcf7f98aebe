package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OneSn1pe/PivotAI-2-sub002/internal/access"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/auth"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/middleware"
	"github.com/OneSn1pe/PivotAI-2-sub002/internal/store"
)

// ownerProfile is the full record the profile owner sees.
type ownerProfile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	DisplayName   string    `json:"display_name"`
	Role          string    `json:"role,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// recruiterProfile is the reduced read-only projection recruiters get.
type recruiterProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role,omitempty"`
}

func ownerProfileFrom(u *store.UserRecord) ownerProfile {
	return ownerProfile{
		ID:            u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
		Role:          u.Role,
		Status:        u.Status,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func recruiterProfileFrom(u *store.UserRecord) recruiterProfile {
	return recruiterProfile{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// GetProfile serves one user record, shaped by the caller's access
// level. The decision is made on the path id alone, before any store
// read, so a denied caller learns nothing about the id's existence.
func (h *Handler) GetProfile(c *gin.Context) {
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

	record, err := h.profiles.Get(c.Request.Context(), ownerID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(c, auth.ErrNotFound)
		return
	}
	if err != nil {
		respondError(c, auth.ErrUpstream)
		return
	}

	switch level {
	case access.OwnerAccess:
		c.JSON(http.StatusOK, ownerProfileFrom(record))
	default:
		c.JSON(http.StatusOK, recruiterProfileFrom(record))
	}
}
