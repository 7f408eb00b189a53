package matches

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/udinder/internal/app"
)

// Registrar ties the like and match routes into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the match service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(router gin.IRouter) {
	h := NewHandler(NewMatchService(r.appCtx))

	router.POST("/like/:userId/:likedUserId", h.Like)
	router.GET("/matches/:userId", h.List)
	router.DELETE("/matches/:matchId", h.Delete)
}
