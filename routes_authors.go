package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-shelf/models"
)

func setupAuthorRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/api/authors")

	rg.GET("", func(c *gin.Context) {
		var authors []models.Author
		if err := db.Order("last_name, first_name").Find(&authors).Error; err != nil {
			log.Error("Database query for authors failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Failed to retrieve authors", nil)
			return
		}
		respond(c, http.StatusOK, "Authors retrieved successfully", authors)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid author ID", nil)
			return
		}

		var author models.Author
		if err := db.First(&author, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond(c, http.StatusNotFound, "Author not found", nil)
				return
			}
			log.Error("Database query for author failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Failed to retrieve author", nil)
			return
		}

		var authored []models.Paper
		err := db.Model(&models.Paper{}).
			Joins("JOIN author_papers ap ON ap.paper_id = papers.id").
			Where("ap.author_id = ?", id).
			Order("papers.publication_date DESC").
			Find(&authored).Error
		if err != nil {
			log.Error("Database query for authored papers failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Failed to retrieve author", nil)
			return
		}

		respond(c, http.StatusOK, "Author retrieved successfully", gin.H{
			"author": author,
			"papers": authored,
		})
	})
}
