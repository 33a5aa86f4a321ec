package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shophub/internal/flash"
)

// OwnerOnly must run after IsLoggedIn.
func OwnerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok || !account.IsOwner() {
			flash.AddError(c, "Only the store owner can access that page")
			c.Redirect(http.StatusFound, "/shop")
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIOwnerOnly must run after APIAuth.
func APIOwnerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok || !account.IsOwner() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "forbidden"})
			return
		}
		c.Next()
	}
}
