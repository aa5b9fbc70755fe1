package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paper-shelf/models"
	"paper-shelf/services"
)

func setupFieldRoutes(router *gin.Engine, db *gorm.DB, identity *services.IdentityService, log *zap.Logger) {
	rg := router.Group("/api/fields")

	rg.GET("", func(c *gin.Context) {
		var fields []models.Field
		if err := db.Order("field_name").Find(&fields).Error; err != nil {
			log.Error("Database query for fields failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Failed to retrieve fields", nil)
			return
		}
		respond(c, http.StatusOK, "Fields retrieved successfully", fields)
	})

	// Mutationen sind Admins vorbehalten.
	admin := rg.Group("", authRequired(identity), adminRequired())

	admin.POST("", func(c *gin.Context) {
		var field models.Field
		if err := c.ShouldBindJSON(&field); err != nil || field.FieldName == "" {
			respond(c, http.StatusBadRequest, "Field name is required", nil)
			return
		}
		var count int64
		db.Model(&models.Field{}).Where("field_name = ?", field.FieldName).Count(&count)
		if count > 0 {
			respond(c, http.StatusConflict, "Field already exists", nil)
			return
		}
		if err := db.Create(&field).Error; err != nil {
			log.Error("Failed to create field", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Failed to create field", nil)
			return
		}
		respond(c, http.StatusCreated, "Field created successfully", field)
	})

	admin.PUT("/:id", func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid field ID", nil)
			return
		}
		var field models.Field
		if err := db.First(&field, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				respond(c, http.StatusNotFound, "Field not found", nil)
				return
			}
			log.Error("Database query for field failed", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Failed to update field", nil)
			return
		}
		var in models.Field
		if err := c.ShouldBindJSON(&in); err != nil || in.FieldName == "" {
			respond(c, http.StatusBadRequest, "Field name is required", nil)
			return
		}
		updates := map[string]interface{}{"field_name": in.FieldName, "description": in.Description}
		if err := db.Model(&field).Updates(updates).Error; err != nil {
			log.Error("Failed to update field", zap.Error(err))
			respond(c, http.StatusInternalServerError, "Failed to update field", nil)
			return
		}
		respond(c, http.StatusOK, "Field updated successfully", field)
	})

	admin.DELETE("/:id", func(c *gin.Context) {
		id, ok := uintParam(c, "id")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid field ID", nil)
			return
		}
		var count int64
		db.Model(&models.Paper{}).Where("field_id = ?", id).Count(&count)
		if count > 0 {
			respond(c, http.StatusConflict, "Field is still referenced by papers", nil)
			return
		}
		result := db.Delete(&models.Field{}, id)
		if result.Error != nil {
			log.Error("Failed to delete field", zap.Error(result.Error))
			respond(c, http.StatusInternalServerError, "Failed to delete field", nil)
			return
		}
		if result.RowsAffected == 0 {
			respond(c, http.StatusNotFound, "Field not found", nil)
			return
		}
		respond(c, http.StatusOK, "Field deleted successfully", nil)
	})
}
