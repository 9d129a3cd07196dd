// Package response 统一 HTTP 响应格式
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/smarthome/pkg/apperror"
	"github.com/wyfcoding/smarthome/pkg/logger"
)

// Success 返回 200 与数据
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// Created 返回 201 与数据
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// Message 返回 200 与一条提示信息
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// ErrorWithStatus 以指定状态码返回错误
func ErrorWithStatus(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"request_id": logger.RequestID(c.Request.Context()),
	})
}

// Error 按错误类别映射状态码并返回错误
func Error(c *gin.Context, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
	}
	ErrorWithStatus(c, status, apperror.PublicMessage(err))
}

// StatusOf 错误类别到 HTTP 状态码的映射
// 冲突类错误沿用 400，与既有客户端保持一致
func StatusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation, apperror.KindConflict:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
