package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/util"
)

func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := util.ExtractToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		memberID, err := util.ParseJWT(token, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		// store member_id in context so handlers can use it
		c.Set("member_id", memberID)

		c.Next()
	}
}
