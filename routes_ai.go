package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/services"
)

func setupAIRoutes(router *gin.Engine, recommend *services.RecommendService, identity *services.IdentityService, log *zap.Logger) {
	rg := router.Group("/api/ai", authRequired(identity))

	rg.POST("/recommend", func(c *gin.Context) {
		var req struct {
			Query string `json:"query"`
			Limit int    `json:"limit"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		rows, err := recommend.Recommend(req.Query, req.Limit)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Recommendations generated", rows)
	})

	rg.GET("/for-you", func(c *gin.Context) {
		rows, err := recommend.ForYou(claimsFrom(c).UserID, 10)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Recommendations generated", rows)
	})
}
