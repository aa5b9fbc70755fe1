package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/services"
)

func setupChatRoutes(router *gin.Engine, chat *services.ChatService, identity *services.IdentityService, log *zap.Logger) {
	rg := router.Group("/api/chat/sessions", authRequired(identity))

	rg.GET("", func(c *gin.Context) {
		sessions, err := chat.ListSessions(claimsFrom(c).UserID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Chat sessions retrieved successfully", sessions)
	})

	rg.GET("/:sessionId", func(c *gin.Context) {
		sessionID, ok := uintParam(c, "sessionId")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid session ID", nil)
			return
		}
		detail, err := chat.GetSession(claimsFrom(c).UserID, sessionID)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Chat session retrieved successfully", detail)
	})

	rg.POST("", func(c *gin.Context) {
		var req struct {
			Title    string                  `json:"title"`
			Messages []services.MessageInput `json:"messages"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		session, err := chat.CreateSession(claimsFrom(c).UserID, req.Title, req.Messages)
		if err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusCreated, "Chat session created successfully", gin.H{
			"sessionId": session.ID,
			"title":     session.Title,
		})
	})

	rg.PUT("/:sessionId", func(c *gin.Context) {
		sessionID, ok := uintParam(c, "sessionId")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid session ID", nil)
			return
		}
		var req struct {
			Title    *string                 `json:"title"`
			Messages []services.MessageInput `json:"messages"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respond(c, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
		if err := chat.UpdateSession(claimsFrom(c).UserID, sessionID, req.Title, req.Messages); err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Chat session updated successfully", gin.H{"sessionId": sessionID})
	})

	rg.DELETE("/:sessionId", func(c *gin.Context) {
		sessionID, ok := uintParam(c, "sessionId")
		if !ok {
			respond(c, http.StatusBadRequest, "Invalid session ID", nil)
			return
		}
		if err := chat.DeleteSession(claimsFrom(c).UserID, sessionID); err != nil {
			respondError(c, log, err)
			return
		}
		respond(c, http.StatusOK, "Chat session deleted successfully", nil)
	})
}
