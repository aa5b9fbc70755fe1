package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/services"
)

func setupUserRoutes(router *gin.Engine, identity *services.IdentityService, log *zap.Logger) {
	rg := router.Group("/api/users", authRequired(identity))

	rg.GET("/profile", func(c *gin.Context) {
		profile, err := identity.GetProfile(claimsFrom(c).UserID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Profile retrieved successfully", profile)
	})

	rg.PUT("/profile", func(c *gin.Context) {
		var req struct {
			Name           string  `json:"name"`
			Affiliation    *string `json:"affiliation"`
			Specialization *string `json:"specialization"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		profile, err := identity.UpdateProfile(claimsFrom(c).UserID, req.Name, req.Affiliation, req.Specialization)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Profile updated successfully", profile)
	})
}
