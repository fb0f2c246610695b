package middleware

import (
	"challenge_hub/utils"

	"github.com/gin-gonic/gin"
)

// ErrorHandlerMiddleware recovers panics and turns errors left on the
// context into the standard envelope.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				utils.Logger().Errorw("panic recovered", "path", c.Request.URL.Path, "panic", err)

				if !c.Writer.Written() {
					utils.InternalServerError(c, "internal server error")
				}
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			utils.Logger().Errorw("request error", "path", c.Request.URL.Path, "error", err.Err)

			if !c.Writer.Written() {
				utils.Fail(c, err.Err)
			}
		}
	}
}
