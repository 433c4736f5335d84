package handler

import (
	"net/http"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"

	"github.com/gin-gonic/gin"
)

// GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, domain.HealthResponse{Status: "OK", Message: "AI Service is running"})
}
