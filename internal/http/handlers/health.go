package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	state func() string
}

// NewHealthHandler reports the scheduler state alongside liveness. state may be nil.
func NewHealthHandler(state func() string) *HealthHandler {
	return &HealthHandler{state: state}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.state != nil {
		body["scheduler_state"] = h.state()
	}
	c.JSON(http.StatusOK, body)
}
