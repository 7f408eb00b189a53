package profiles

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/udinder/internal/app"
)

// Registrar ties the profile routes into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(router gin.IRouter) {
	h := NewHandler(NewProfileService(r.appCtx))

	g := router.Group("/profiles")
	g.POST("/upload-photo/", h.UploadPhoto)
	g.PUT("/add-description/", h.SetDescription)
	g.PUT("/set-interests/", h.SetInterests)
	g.GET("/:userId", h.Get)
	g.GET("/:userId/photo", h.Photo)
}
