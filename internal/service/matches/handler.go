package matches

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/udinder/internal/server"
)

// Handler serves the like and match routes.
type Handler struct {
	svc *Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Like records a directed like and reports whether it made a match.
func (h *Handler) Like(c *gin.Context) {
	userID, err := server.ParseID(c, "userId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	likedUserID, err := server.ParseID(c, "likedUserId")
	if err != nil {
		server.RespondError(c, err)
		return
	}

	res, err := h.svc.Like(c.Request.Context(), userID, likedUserID)
	if err != nil {
		server.RespondError(c, err)
		return
	}

	msg := "Like registered"
	if res.Mutual {
		msg = "It's a match!"
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "mutual": res.Mutual, "match": res.Match})
}

// List returns the mutual matches of a user.
func (h *Handler) List(c *gin.Context) {
	userID, err := server.ParseID(c, "userId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	out, err := h.svc.ListMatchSummaries(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Delete removes one like edge by id.
func (h *Handler) Delete(c *gin.Context) {
	matchID, err := server.ParseID(c, "matchId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	if _, err := h.svc.DeleteMatch(c.Request.Context(), matchID); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Match deleted successfully"})
}
