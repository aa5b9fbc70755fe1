package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/config"
	"paper-shelf/services"
	"paper-shelf/storage"
)

func setupAdminRoutes(router *gin.Engine, cfg *config.Config, papers *services.PaperService, identity *services.IdentityService, stats *services.StatsService, files *storage.FileStore, log *zap.Logger) {
	rg := router.Group("/api/admin", authRequired(identity), adminRequired())

	rg.GET("/statistics", func(c *gin.Context) {
		overview, err := stats.GetOverview()
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Statistics retrieved successfully", overview)
	})

	rg.POST("/papers", func(c *gin.Context) {
		header, err := c.FormFile("pdfFile")
		path := ""
		if err == nil {
			if header.Header.Get("Content-Type") != "application/pdf" {
				respond(c, http.StatusBadRequest, "Only PDF files are allowed", nil)
				return
			}
			if header.Size > cfg.MaxUploadMB<<20 {
				respond(c, http.StatusBadRequest, "File exceeds the upload size limit", nil)
				return
			}
			src, err := header.Open()
			if err != nil {
				respond(c, http.StatusInternalServerError, "Failed to read uploaded file", nil)
				return
			}
			defer src.Close()
			path, err = files.Save(header.Filename, src)
			if err != nil {
				log.Error("Failed to store uploaded file", zap.Error(err))
				respond(c, http.StatusInternalServerError, "Failed to store uploaded file", nil)
				return
			}
		}

		// Der Aufräumpfad für bereits geschriebene Dateien liegt im Service;
		// Parse-Fehler der Formularfelder müssen hier selbst aufräumen.
		badRequest := func(msg string) {
			if path != "" {
				if rmErr := files.Remove(path); rmErr != nil {
					log.Warn("Konnte Upload-Datei nicht entfernen", zap.String("path", path), zap.Error(rmErr))
				}
			}
			respond(c, http.StatusBadRequest, msg, nil)
		}

		fieldID, _ := strconv.ParseUint(c.PostForm("fieldId"), 10, 32)

		var authors []services.AuthorInput
		if raw := c.PostForm("authors"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &authors); err != nil {
				badRequest("Invalid authors payload")
				return
			}
		}
		var keywords []string
		if raw := c.PostForm("keywords"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &keywords); err != nil {
				badRequest("Invalid keywords payload")
				return
			}
		}
		var pubDate *time.Time
		if raw := c.PostForm("publicationDate"); raw != "" {
			t, err := time.Parse("2006-01-02", raw)
			if err != nil {
				t, err = time.Parse(time.RFC3339, raw)
			}
			if err != nil {
				badRequest("Invalid publication date")
				return
			}
			pubDate = &t
		}

		paper, err := papers.Submit(services.SubmitInput{
			Title:           c.PostForm("title"),
			Abstract:        c.PostForm("abstract"),
			PublicationDate: pubDate,
			FieldID:         uint(fieldID),
			Authors:         authors,
			Keywords:        keywords,
			AdminID:         claimsFrom(c).UserID,
			Path:            path,
		})
		if err != nil {
			respondError(c, log, err)
			return
		}
		papersUploadedCounter.Inc()
		respond(c, http.StatusCreated, "Paper uploaded successfully", gin.H{
			"paperId": paper.ID,
			"title":   paper.Title,
			"path":    paper.Path,
		})
	})

	rg.GET("/papers", func(c *gin.Context) {
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

	rg.PUT("/papers/:id", func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid paper ID", nil)
			return
		}
		var in services.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		if err := papers.Update(id, in); err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Paper updated successfully", gin.H{"paperId": id})
	})

	rg.DELETE("/papers/:id", func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid paper ID", nil)
			return
		}
		if err := papers.Delete(id); err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Paper deleted successfully", nil)
	})

	rg.GET("/users", func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		result, err := identity.ListUsers(page, limit)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Users retrieved successfully", result)
	})

	rg.POST("/users", func(c *gin.Context) {
		var in services.RegisterInput
		if err := c.ShouldBindJSON(&in); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		user, err := identity.CreateUser(in)
		if err != nil {
			respondError(c, log, err)
			return
		}
		usersRegisteredCounter.Inc()
		respond(c, http.StatusCreated, "User created successfully", gin.H{
			"userId": user.ID,
			"name":   user.Name,
			"email":  user.Email,
			"role":   user.Role,
		})
	})

	rg.PUT("/users/:id/role", func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid user ID", nil)
			return
		}
		var req struct {
			Role string `json:"role"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		if err := identity.ChangeRole(claimsFrom(c).UserID, id, req.Role); err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "User role updated successfully", gin.H{
			"userId": id,
			"role":   req.Role,
		})
	})

	rg.DELETE("/users/:id", func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid user ID", nil)
			return
		}
		if err := identity.DeleteUser(claimsFrom(c).UserID, id); err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "User deleted successfully", nil)
	})
}
