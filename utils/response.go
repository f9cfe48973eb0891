package utils

import "github.com/gin-gonic/gin"

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "error": message})
}

// JSONMessage is the {success, message} shape the site's forms read.
func JSONMessage(c *gin.Context, code int, success bool, message string) {
	c.JSON(code, gin.H{"success": success, "message": message})
}
