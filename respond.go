package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"paper-shelf/services"
)

// respond schreibt die einheitliche JSON-Hülle {success, message, data}.
func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"success": status < 400,
		"message": message,
		"data":    data,
	})
}

// respondError bildet Service-Fehler auf HTTP-Status ab. Interne Details
// gehen nur bei unerwarteten Fehlern mit hinaus (und ins Log).
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := statusForKind(services.KindOf(err))
	body := gin.H{
		"success": false,
		"message": services.MessageOf(err),
		"data":    nil,
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		if cause := services.CauseOf(err); cause != nil {
			body["error"] = cause.Error()
		}
	}
	c.JSON(status, body)
}

// uintParam liest einen numerischen Pfadparameter; 0 oder Nicht-Zahlen sind ungültig.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindAuth:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
