package users

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/server"
)

type registerRequest struct {
	ID          uint64 `json:"id" binding:"required,gt=0"`
	Email       string `json:"email" binding:"required,email"`
	Name        string `json:"name" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Gender      string `json:"gender"`
	BirthDate   *Date  `json:"birth_date"`
	Preferences string `json:"preferences"`
	Location    string `json:"location"`
}

type updateRequest struct {
	Name        *string `json:"name"`
	Password    *string `json:"password"`
	Gender      *string `json:"gender"`
	Preferences *string `json:"preferences"`
	Location    *string `json:"location"`
	BirthDate   *Date   `json:"birth_date"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Message     string      `json:"message"`
	User        interface{} `json:"user"`
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
}

// Handler adapts Service to HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a Handler backed by svc.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles POST /users/add.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("invalid request body: "+err.Error()))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), RegisterInput{
		ID:          req.ID,
		Email:       req.Email,
		Name:        req.Name,
		Password:    req.Password,
		Gender:      req.Gender,
		BirthDate:   req.BirthDate.Ptr(),
		Preferences: req.Preferences,
		Location:    req.Location,
	})
	if err != nil {
		server.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User created successfully",
		"user":    user,
		"age":     user.Age,
	})
}

// List returns a page of users selected by skip and limit.
func (h *Handler) List(c *gin.Context) {
	skip, err := intQuery(c, "skip", 0)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	limit, err := intQuery(c, "limit", DefaultListLimit)
	if err != nil {
		server.RespondError(c, err)
		return
	}

	users, err := h.svc.List(c.Request.Context(), skip, limit)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get returns one user by id.
func (h *Handler) Get(c *gin.Context) {
	id, err := server.ParseID(c, "id")
	if err != nil {
		server.RespondError(c, err)
		return
	}

	user, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update applies a partial update. Empty fields are left as they are.
func (h *Handler) Update(c *gin.Context) {
	id, err := server.ParseID(c, "id")
	if err != nil {
		server.RespondError(c, err)
		return
	}

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("invalid request body: "+err.Error()))
		return
	}

	user, err := h.svc.Update(c.Request.Context(), id, Patch{
		Name:        req.Name,
		Password:    req.Password,
		Gender:      req.Gender,
		Preferences: req.Preferences,
		Location:    req.Location,
		BirthDate:   req.BirthDate.Ptr(),
	})
	if err != nil {
		server.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": user})
}

// Delete removes a user together with the rows that reference it.
func (h *Handler) Delete(c *gin.Context) {
	id, err := server.ParseID(c, "id")
	if err != nil {
		server.RespondError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		server.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// Login exchanges email and password for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondError(c, svcErr.InvalidArgument("invalid request body: "+err.Error()))
		return
	}

	res, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		Message:     "Login successful",
		User:        res.User,
		AccessToken: res.Token,
		TokenType:   "bearer",
		ExpiresAt:   res.ExpiresAt,
	})
}

// Logout is a no-op acknowledgement; tokens are not revoked.
func (h *Handler) Logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, svcErr.InvalidArgument(name + " must be a non-negative integer")
	}
	return v, nil
}
