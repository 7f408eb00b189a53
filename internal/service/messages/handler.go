package messages

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/server"
)

// NextPageHeader carries the token of the following inbox page.
const NextPageHeader = "X-Next-Page-Token"

type sendRequest struct {
	SenderID   uint64 `json:"sender_id" binding:"required,gt=0"`
	ReceiverID uint64 `json:"receiver_id" binding:"required,gt=0"`
	Content    string `json:"content" binding:"required"`
}

// Handler serves the message routes.
type Handler struct {
	svc *Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Send delivers a message between two matched users.
func (h *Handler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("invalid request body: "+err.Error()))
		return
	}

	msg, err := h.svc.Send(c.Request.Context(), req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

// Inbox lists received messages. Without limit or page_token the whole inbox
// is returned; otherwise one page, with the next token in NextPageHeader.
func (h *Handler) Inbox(c *gin.Context) {
	userID, err := server.ParseID(c, "userId")
	if err != nil {
		server.RespondError(c, err)
		return
	}

	rawLimit, token := c.Query("limit"), c.Query("page_token")
	if rawLimit == "" && token == "" {
		out, err := h.svc.ListForUser(c.Request.Context(), userID)
		if err != nil {
			server.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}

	limit := 0
	if rawLimit != "" {
		if limit, err = strconv.Atoi(rawLimit); err != nil || limit <= 0 {
			server.RespondError(c, svcErr.InvalidArgument("limit must be a positive integer"))
			return
		}
	}
	page, err := h.svc.ListPage(c.Request.Context(), userID, token, limit)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	if page.NextToken != "" {
		c.Header(NextPageHeader, page.NextToken)
	}
	c.JSON(http.StatusOK, page.Messages)
}

// Delete removes a message by id.
func (h *Handler) Delete(c *gin.Context) {
	messageID, err := server.ParseID(c, "messageId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	msg, err := h.svc.Delete(c.Request.Context(), messageID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully", "deleted": msg})
}
