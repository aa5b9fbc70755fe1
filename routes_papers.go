package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/models"
	"paper-shelf/services"
)

func setupPaperRoutes(router *gin.Engine, papers *services.PaperService, interactions *services.InteractionService, identity *services.IdentityService, log *zap.Logger) {
	rg := router.Group("/api/papers")

	rg.GET("", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		rows, pagination, err := papers.List(page, limit)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Papers retrieved successfully", gin.H{
			"papers":     rows,
			"pagination": pagination,
		})
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid paper ID", nil)
			return
		}
		detail, err := papers.Get(id)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Paper retrieved successfully", detail)
	})

	rg.GET("/search/:query", func(c *gin.Context) {
		query := c.Param("query")
		rows, err := papers.Search(query, 50)
		if err != nil {
			respondError(c, log, err)
			return
		}

		// Suchanfragen angemeldeter Researcher werden protokolliert.
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			if claims, err := identity.ParseToken(strings.TrimPrefix(header, "Bearer ")); err == nil && claims.Role == models.RoleResearcher {
				if err := interactions.RecordSearch(claims.UserID, query); err != nil {
					log.Warn("Konnte Suche nicht protokollieren", zap.Error(err))
				}
			}
		}

		respond(c, http.StatusOK, "Search completed", gin.H{
			"query":   query,
			"results": rows,
		})
	})
}
