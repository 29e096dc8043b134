package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"contact-agenda/internal/shared"
	"contact-agenda/internal/shared/response"
	"contact-agenda/internal/shared/urls"
)

// Recovery logs a panic and answers 500: the JSON envelope under the
// admin API, the error page everywhere else.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Str("request_id", c.GetString(shared.ContextKeyRequestID)).
					Str("path", c.Request.URL.Path).
					Interface("error", err).
					Msg("Panic recovered")

				if c.Writer.Written() {
					c.Abort()
					return
				}
				if strings.HasPrefix(c.Request.URL.Path, urls.AdminAPI) {
					response.InternalServerError(c, "Internal server error")
				} else {
					response.PageError(c)
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
