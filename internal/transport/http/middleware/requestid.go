package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/tabletophq/groupfinder/internal/requestid"
)

// RequestID tags the request context and the response with a request
// id. An inbound X-Request-ID (from a proxy or a retrying client) is
// kept so the caller's correlation survives end to end.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestid.Header)
		if id == "" {
			id = requestid.New()
		}

		c.Request = c.Request.WithContext(requestid.NewContext(c.Request.Context(), id))
		c.Header(requestid.Header, id)
		c.Next()
	}
}
