package middleware

import (
	"github.com/gin-gonic/gin"

	"telegram_rpg/pkg/errors"
)

// ErrorHandler переводит накопленные в контексте ошибки в единый JSON-ответ.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last()
		c.JSON(errors.HTTPStatusFromError(err.Err), gin.H{
			"error": err.Error(),
		})
	}
}
