package httpapi

import (
	"github.com/gin-gonic/gin"

	"tennis-score-go/internal/matchsvc"
)

// RegisterMatchRoutes wires the match lifecycle operations onto rg.
func RegisterMatchRoutes(rg *gin.RouterGroup, svc *matchsvc.Service) {
	rg.POST("/matches", CreateMatchHandler(svc))
	rg.GET("/matches", ListMatchesHandler(svc))
	rg.GET("/matches/:uuid", GetMatchHandler(svc))
	rg.POST("/matches/:uuid/award", AwardPointHandler(svc))
	rg.POST("/matches/:uuid/reset", ResetHandler(svc))
}
