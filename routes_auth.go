package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/services"
)

func setupAuthRoutes(router *gin.Engine, identity *services.IdentityService, log *zap.Logger) {
	rg := router.Group("/api/auth")

	rg.POST("/register", func(c *gin.Context) {
		var in services.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		user, err := identity.Register(in)
		if err != nil {
			respondError(c, log, err)
			return
		}
		usersRegisteredCounter.Inc()
		respond(c, http.StatusCreated, "User registered successfully", gin.H{
			"userId": user.ID,
			"email":  user.Email,
			"name":   user.Name,
			"role":   user.Role,
		})
	})

	rg.POST("/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		token, user, err := identity.Login(req.Email, req.Password)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Login successful", gin.H{
			"token": token,
			"user": gin.H{
				"userId": user.ID,
				"name":   user.Name,
				"email":  user.Email,
				"role":   user.Role,
			},
		})
	})

	rg.GET("/me", authRequired(identity), func(c *gin.Context) {
		profile, err := identity.GetProfile(claimsFrom(c).UserID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "User profile retrieved", profile)
	})
}
