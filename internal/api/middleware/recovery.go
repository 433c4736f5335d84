package middleware

import (
	"fmt"
	"log"
	"net/http"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into the service's JSON error body with a 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, domain.ErrorResponse{
			Success: false,
			Error:   fmt.Sprint(recovered),
		})
	})
}
