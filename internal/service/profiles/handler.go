package profiles

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/server"
)

// multipart framing on top of the photo itself
const uploadOverhead = 1 << 20

type descriptionRequest struct {
	Description string `form:"description" json:"description" binding:"required"`
}

type interestsRequest struct {
	Interests string `form:"interests" json:"interests" binding:"required"`
}

type profileResponse struct {
	UserID      uint64 `json:"user_id"`
	Description string `json:"description"`
	Interests   string `json:"interests"`
	HasPhoto    bool   `json:"has_photo"`
}

// Handler adapts Service to HTTP. The target user comes from ?user_id= on
// the mutating routes.
type Handler struct {
	svc *Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// UploadPhoto stores the multipart "photo" field as the profile photo.
func (h *Handler) UploadPhoto(c *gin.Context) {
	userID, err := server.ParseQueryID(c, "user_id")
	if err != nil {
		server.RespondError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoBytes+uploadOverhead)
	fh, err := c.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.RespondError(c, ErrPhotoTooLarge)
			return
		}
		server.RespondError(c, svcErr.InvalidArgument("multipart field \"photo\" is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		server.RespondError(c, err)
		return
	}
	defer f.Close()

	photo, err := io.ReadAll(io.LimitReader(f, MaxPhotoBytes+1))
	if err != nil {
		server.RespondError(c, err)
		return
	}

	if err := h.svc.UploadPhoto(c.Request.Context(), userID, photo); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo uploaded successfully"})
}

// SetDescription replaces the profile description.
func (h *Handler) SetDescription(c *gin.Context) {
	userID, err := server.ParseQueryID(c, "user_id")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	var req descriptionRequest
	if err := c.ShouldBind(&req); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("description is required"))
		return
	}

	if err := h.svc.SetDescription(c.Request.Context(), userID, req.Description); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Description added successfully"})
}

// SetInterests replaces the interests list.
func (h *Handler) SetInterests(c *gin.Context) {
	userID, err := server.ParseQueryID(c, "user_id")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	var req interestsRequest
	if err := c.ShouldBind(&req); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("interests is required"))
		return
	}

	if err := h.svc.SetInterests(c.Request.Context(), userID, req.Interests); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Interests set successfully"})
}

// Get returns the profile of a user.
func (h *Handler) Get(c *gin.Context) {
	userID, err := server.ParseID(c, "userId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	p, err := h.svc.Get(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profileResponse{
		UserID:      p.UserID,
		Description: p.Description,
		Interests:   p.Interests,
		HasPhoto:    len(p.Photo) > 0,
	})
}

// Photo streams the stored image bytes.
func (h *Handler) Photo(c *gin.Context) {
	userID, err := server.ParseID(c, "userId")
	if err != nil {
		server.RespondError(c, err)
		return
	}
	photo, err := h.svc.Photo(c.Request.Context(), userID)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(photo), photo)
}
