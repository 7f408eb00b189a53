package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/udinder/internal/errors"
	"github.com/oggyb/udinder/internal/logger"
)

// RespondError writes {"detail": msg} with the status mapped from err.
// Internal errors are logged with their cause and answered generically.
func RespondError(c *gin.Context, err error) {
	status := svcErr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": svcErr.Message(err)})
}

// ParseID reads a positive integer path parameter.
func ParseID(c *gin.Context, name string) (uint64, error) {
	return parsePositive(c.Param(name), name)
}

// ParseQueryID reads a positive integer query parameter.
func ParseQueryID(c *gin.Context, name string) (uint64, error) {
	return parsePositive(c.Query(name), name)
}

func parsePositive(raw, name string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidArgument(name + " must be a positive integer")
	}
	return id, nil
}

// BearerToken extracts the token from "Authorization: Bearer <t>", falling
// back to the "token" query parameter.
func BearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}
