package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/udinder/internal/db"
	"github.com/oggyb/udinder/internal/logger"
	"github.com/oggyb/udinder/internal/server"
)

const principalKey = "admin.principal"

// Handler serves the admin routes.
type Handler struct {
	svc *Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RequireAdmin aborts unless the request carries a token of an unblocked
// admin. The principal is stored on the gin context.
func (h *Handler) RequireAdmin(c *gin.Context) {
	a, err := h.svc.Authorize(c.Request.Context(), server.BearerToken(c))
	if err != nil {
		logger.FromContext(c.Request.Context()).Info("admin authorization rejected", "err", err)
		server.RespondError(c, err)
		return
	}
	c.Set(principalKey, a)
	c.Next()
}

func principal(c *gin.Context) *db.Admin {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	a, _ := v.(*db.Admin)
	return a
}

// Promote makes an existing user an admin.
func (h *Handler) Promote(c *gin.Context) {
	userID, err := server.ParseID(c, "userId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	if _, err := h.svc.Promote(c.Request.Context(), userID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin created successfully"})
}

// Block marks the admin row of a user as blocked.
func (h *Handler) Block(c *gin.Context) {
	userID, err := server.ParseID(c, "userId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	if _, err := h.svc.Block(c.Request.Context(), principal(c), userID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User blocked successfully"})
}

// Unblock clears the blocked flag.
func (h *Handler) Unblock(c *gin.Context) {
	userID, err := server.ParseID(c, "userId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	if _, err := h.svc.Unblock(c.Request.Context(), principal(c), userID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unblocked successfully"})
}
