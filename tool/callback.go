package tool

import "github.com/gin-gonic/gin"

// FastReturnError is the {"error": msg} body every failing /api/self/v1 route returns.
func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

// FastReturnErrors is used for validation failures, which come as a list.
func FastReturnErrors(msg string, details []string) gin.H {
	return gin.H{
		"error":   msg,
		"details": details,
	}
}

func FastReturnSuccess() gin.H {
	return gin.H{
		"status": "ok",
	}
}
