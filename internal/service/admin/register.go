package admin

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/udinder/internal/app"
)

// Registrar ties the admin routes into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the admin handlers. Promotion is open; block and unblock
// need an admin principal.
func (r *Registrar) Register(router gin.IRouter) {
	h := NewHandler(NewAdminService(r.appCtx))

	g := router.Group("/admin")
	g.POST("/create-admin/:userId", h.Promote)

	guarded := g.Group("", h.RequireAdmin)
	guarded.PUT("/block-user/:userId", h.Block)
	guarded.PUT("/unblock-user/:userId", h.Unblock)
}
