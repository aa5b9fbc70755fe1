package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/services"
)

func setupStatisticsRoutes(router *gin.Engine, stats *services.StatsService, identity *services.IdentityService, log *zap.Logger) {
	rg := router.Group("/api/statistics", authRequired(identity))

	rg.GET("/overview", func(c *gin.Context) {
		overview, err := stats.GetOverview()
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Statistics retrieved successfully", overview)
	})

	rg.GET("/papers", func(c *gin.Context) {
		paperStats, err := stats.GetPaperStats()
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Paper statistics retrieved successfully", paperStats)
	})

	rg.GET("/users", func(c *gin.Context) {
		userStats, err := stats.GetUserStats()
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "User statistics retrieved successfully", userStats)
	})
}
