package users

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/udinder/internal/app"
)

// Registrar ties the user and session routes into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the user service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the user service handlers to the router
func (r *Registrar) Register(router gin.IRouter) {
	h := NewHandler(NewUserService(r.appCtx))

	router.POST("/users/add", h.Register)
	router.GET("/users/", h.List)
	router.GET("/users/:id", h.Get)
	router.PUT("/users/:id", h.Update)
	router.DELETE("/users/:id", h.Delete)

	router.POST("/login", h.Login)
	router.POST("/logout", h.Logout)
}
