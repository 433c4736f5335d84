package api

import (
	"github.com/asmitabhandari/smart-parking-system/internal/api/handler"
	"github.com/asmitabhandari/smart-parking-system/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRouter(lprService handler.PlateDetector, parkingService handler.AssignmentRecorder) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS())

	lprH := handler.NewLPRHandler(lprService, parkingService)
	r.POST("/detect-plate", lprH.DetectPlate)

	simH := handler.NewSimulationHandler(parkingService)
	r.POST("/simulate-detection", simH.SimulateDetection)

	r.GET("/health", handler.Health)

	return r
}
