package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/wfunc/car-dash/internal/errors"
	"github.com/wfunc/car-dash/internal/logger"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-ID"

// RequestID 为每个请求分配请求ID，客户端已带时沿用
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("requestID", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// AccessLog 请求日志中间件
//
// quietPaths 中的高频轮询路径成功时只记 debug 日志。
func AccessLog(quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = struct{}{}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		requestID, _ := GetRequestID(c)
		logger.LogRequest(accessLevel(quiet, path, status),
			c.Request.Method, path, status, time.Since(start), c.ClientIP(), requestID)
	}
}

// accessLevel 请求日志级别
func accessLevel(quiet map[string]struct{}, path string, status int) zapcore.Level {
	if _, ok := quiet[path]; ok && status < http.StatusBadRequest {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

// Recovery panic 恢复中间件，记录堆栈并返回统一错误响应
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.LogPanic(r, debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					errors.NewErrorResponse(errors.New(errors.ErrUnknown, "服务内部错误")))
			}
		}()
		c.Next()
	}
}

// GetRequestID 从上下文获取请求ID
func GetRequestID(c *gin.Context) (string, bool) {
	if v, exists := c.Get("requestID"); exists {
		if id, ok := v.(string); ok {
			return id, true
		}
	}
	return "", false
}
