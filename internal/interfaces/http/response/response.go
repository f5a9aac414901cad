package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 响应结构与既有前端约定保持一致：
// 成功时 success=true 并平铺业务字段，失败时 success=false 加 error/detail。

// Success 成功响应，fields 平铺进响应体
func Success(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// Fail 业务失败响应，HTTP 状态码仍为 200
func Fail(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{
		"success": false,
		"error":   message,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, gin.H{
		"success": false,
		"error":   message,
	})
}

// ErrorWithDetail 带详情的错误响应
func ErrorWithDetail(c *gin.Context, httpCode int, message, detail string) {
	c.JSON(httpCode, gin.H{
		"success": false,
		"error":   message,
		"detail":  detail,
	})
}
