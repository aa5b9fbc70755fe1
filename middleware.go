package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"paper-shelf/models"
	"paper-shelf/services"
)

const claimsKey = "claims"

// authRequired prüft den Bearer-Token und hinterlegt die Claims im Kontext.
func authRequired(identity *services.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Access token required",
				"data":    nil,
			})
			return
		}
		claims, err := identity.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": services.MessageOf(err),
				"data":    nil,
			})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// adminRequired verlangt die Admin-Rolle; authRequired muss vorgeschaltet sein.
func adminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil || claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Admin access required",
				"data":    nil,
			})
			return
		}
		c.Next()
	}
}

// claimsFrom liest die vom Auth-Middleware hinterlegten Claims.
func claimsFrom(c *gin.Context) *services.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*services.Claims)
	return claims
}
