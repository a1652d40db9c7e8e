package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Abort writes an error envelope and stops the handler chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// Message wraps a plain confirmation text in the success envelope.
func Message(c *gin.Context, statusCode int, message string) {
	Success(c, statusCode, gin.H{"message": message})
}
