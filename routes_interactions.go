package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/services"
)

func setupInteractionRoutes(router *gin.Engine, interactions *services.InteractionService, identity *services.IdentityService, log *zap.Logger) {
	rg := router.Group("/api/interactions")

	rg.POST("/download/:paperId", authRequired(identity), func(c *gin.Context) {
		paperID, ok := uintParam(c, "paperId")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid paper ID", nil)
			return
		}
		if err := interactions.RecordDownload(claimsFrom(c).UserID, paperID); err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusCreated, "Download recorded", nil)
	})

	rg.POST("/review", authRequired(identity), func(c *gin.Context) {
		var req struct {
			PaperID uint   `json:"paperId"`
			Rating  int    `json:"rating"`
			Comment string `json:"comment"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.PaperID == 0 {
			respond(c, http.StatusBadRequest, "Paper ID and rating are required", nil)
			return
		}
		review, err := interactions.CreateReview(claimsFrom(c).UserID, req.PaperID, req.Rating, req.Comment)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusCreated, "Review created successfully", review)
	})

	rg.GET("/reviews/:paperId", func(c *gin.Context) {
		paperID, ok := uintParam(c, "paperId")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid paper ID", nil)
			return
		}
		rows, err := interactions.ListReviews(paperID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Reviews retrieved successfully", rows)
	})
}
