package messages

import (
	"github.com/gin-gonic/gin"

	"github.com/oggyb/udinder/internal/app"
)

// Registrar ties the messaging routes into the HTTP router
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(router gin.IRouter) {
	h := NewHandler(NewMessageService(r.appCtx))

	router.POST("/messages/", h.Send)
	router.GET("/messages/:userId/", h.Inbox)
	router.DELETE("/messages/:messageId/", h.Delete)
}
