package api

import (
	"context"
	"embed"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/car-dash/internal/errors"
	"github.com/wfunc/car-dash/internal/middleware"
	"github.com/wfunc/car-dash/internal/models"
	"github.com/wfunc/car-dash/internal/repository"
	"github.com/wfunc/car-dash/internal/telemetry"
	ws "github.com/wfunc/car-dash/internal/websocket"
	"go.uber.org/zap"
)

//go:embed static/index.html
var staticFS embed.FS

// Dashboard 远程镜像所需的仪表视图
type Dashboard interface {
	Snapshot() telemetry.Snapshot
	SVG() string
	SourceDown() bool
}

// ReadingHistory 读数记录查询，记录器未启用时为 nil
type ReadingHistory interface {
	Latest(ctx context.Context, limit int) ([]*models.ReadingLog, error)
	Stats(ctx context.Context, start, end *time.Time) (*models.ReadingLogStats, error)
	Query(ctx context.Context, q *models.ReadingLogQuery) ([]*models.ReadingLog, int64, error)
	ListBySession(ctx context.Context, sessionID string, pagination *repository.Pagination) ([]*models.ReadingLog, error)
	SessionID() string
}

// quietPaths 成功时只按 debug 记录的路径，镜像页面每条读数都会刷新一次
var quietPaths = []string{"/api/v1/cluster.svg"}

// RouterOptions 路由器参数
type RouterOptions struct {
	Mode      string
	Source    string
	Dashboard Dashboard
	Hub       *ws.Hub
	History   ReadingHistory
	Logger    *zap.Logger
}

// Router API路由器
type Router struct {
	engine    *gin.Engine
	source    string
	dashboard Dashboard
	hub       *ws.Hub
	history   ReadingHistory
	wsHandler *WebSocketHandler
	log       *zap.Logger
	started   time.Time
}

// NewRouter 创建路由器
func NewRouter(opts RouterOptions) *Router {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	// 创建Gin引擎
	engine := gin.New()

	// 全局中间件
	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.AccessLog(quietPaths...))

	r := &Router{
		engine:    engine,
		source:    opts.Source,
		dashboard: opts.Dashboard,
		hub:       opts.Hub,
		history:   opts.History,
		log:       log,
		started:   time.Now(),
	}
	if opts.Hub != nil {
		r.wsHandler = NewWebSocketHandler(opts.Hub, log)
	}

	// 设置路由
	r.setupRoutes()

	return r
}

// setupRoutes 设置路由
func (r *Router) setupRoutes() {
	// 健康检查
	r.engine.GET("/health", r.healthCheck)

	// 镜像页面
	r.engine.GET("/", r.index)

	// API v1路由组
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/status", r.status)
		v1.GET("/cluster.svg", r.clusterSVG)

		readings := v1.Group("/readings")
		{
			readings.GET("", r.latestReadings)
			readings.GET("/stats", r.readingStats)
			readings.GET("/query", r.queryReadings)
		}

		// current 表示本次运行的会话
		v1.GET("/sessions/:session_id/readings", r.sessionReadings)
	}

	// WebSocket路由
	if r.wsHandler != nil {
		r.engine.GET("/ws", r.wsHandler.Stream)
		v1.GET("/online", r.wsHandler.GetOnlineCount)
	}

	// 404处理
	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errors.NewErrorResponse(errors.New(errors.ErrNotFound, "接口不存在")))
	})
}

// healthCheck 健康检查
func (r *Router) healthCheck(c *gin.Context) {
	snap := r.dashboard.Snapshot()
	status, message := "healthy", "服务运行正常"
	down := r.dashboard.SourceDown()
	if down {
		status, message = "degraded", "数据源已停止，显示最后的读数"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"message":     message,
		"source":      r.source,
		"source_down": down,
		"updates":     snap.Updates,
		"uptime":      time.Since(r.started).Round(time.Second).String(),
	})
}

// index 镜像页面
func (r *Router) index(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		r.fail(c, errors.Wrap(err, errors.ErrNotFound, "页面不存在"))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// status 当前读数
func (r *Router) status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    r.dashboard.Snapshot(),
	})
}

// clusterSVG 当前画面
func (r *Router) clusterSVG(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(r.dashboard.SVG()))
}

// latestReadings 最新的读数记录
func (r *Router) latestReadings(c *gin.Context) {
	if r.history == nil {
		r.fail(c, errors.New(errors.ErrNotImplemented, "读数记录未启用"))
		return
	}

	limit, ok := r.intQuery(c, "limit", 50, 1, 1000)
	if !ok {
		return
	}

	logs, err := r.history.Latest(c.Request.Context(), limit)
	if err != nil {
		r.fail(c, errors.Wrap(err, errors.ErrDatabaseQuery))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"count":   len(logs),
	})
}

// readingStats 读数统计
func (r *Router) readingStats(c *gin.Context) {
	if r.history == nil {
		r.fail(c, errors.New(errors.ErrNotImplemented, "读数记录未启用"))
		return
	}

	start, end, ok := r.timeRange(c)
	if !ok {
		return
	}

	stats, err := r.history.Stats(c.Request.Context(), start, end)
	if err != nil {
		r.fail(c, errors.Wrap(err, errors.ErrDatabaseQuery))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// queryReadings 条件查询读数记录
func (r *Router) queryReadings(c *gin.Context) {
	if r.history == nil {
		r.fail(c, errors.New(errors.ErrNotImplemented, "读数记录未启用"))
		return
	}

	q := &models.ReadingLogQuery{
		Source:    c.Query("source"),
		SessionID: c.Query("session_id"),
	}
	if q.SessionID == "current" {
		q.SessionID = r.history.SessionID()
	}
	if v := c.Query("locked"); v != "" {
		locked, err := strconv.ParseBool(v)
		if err != nil {
			r.fail(c, errors.Newf(errors.ErrInvalidParam, "locked 需要布尔值: %s", v))
			return
		}
		q.Locked = &locked
	}
	for _, p := range []struct {
		name string
		dst  **int
	}{{"min_rpm", &q.MinRPM}, {"min_temp", &q.MinTemp}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			r.fail(c, errors.Newf(errors.ErrInvalidParam, "%s 需要整数: %s", p.name, v))
			return
		}
		*p.dst = &n
	}

	var ok bool
	if q.StartTime, q.EndTime, ok = r.timeRange(c); !ok {
		return
	}
	if q.Limit, ok = r.intQuery(c, "limit", 50, 1, 1000); !ok {
		return
	}
	if q.Offset, ok = r.intQuery(c, "offset", 0, 0, 1<<30); !ok {
		return
	}

	logs, total, err := r.history.Query(c.Request.Context(), q)
	if err != nil {
		r.fail(c, errors.Wrap(err, errors.ErrDatabaseQuery))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    logs,
		"total":   total,
	})
}

// sessionReadings 按会话分页获取读数记录
func (r *Router) sessionReadings(c *gin.Context) {
	if r.history == nil {
		r.fail(c, errors.New(errors.ErrNotImplemented, "读数记录未启用"))
		return
	}

	sessionID := c.Param("session_id")
	if sessionID == "current" {
		sessionID = r.history.SessionID()
	}
	page, ok := r.intQuery(c, "page", 1, 1, 1<<20)
	if !ok {
		return
	}
	pageSize, ok := r.intQuery(c, "page_size", 20, 1, 500)
	if !ok {
		return
	}

	pagination := repository.NewPagination(page, pageSize)
	logs, err := r.history.ListBySession(c.Request.Context(), sessionID, pagination)
	if err != nil {
		r.fail(c, errors.Wrap(err, errors.ErrDatabaseQuery))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
		"data":       logs,
		"pagination": pagination,
	})
}

// intQuery 解析整数查询参数，缺省时返回 def
func (r *Router) intQuery(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	v := c.Query(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		r.fail(c, errors.Newf(errors.ErrInvalidParam, "%s 取值范围 %d-%d: %s", name, lo, hi, v))
		return 0, false
	}
	return n, true
}

// timeRange 解析 start_time 和 end_time
func (r *Router) timeRange(c *gin.Context) (start, end *time.Time, ok bool) {
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"start_time", &start}, {"end_time", &end}} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			r.fail(c, errors.Newf(errors.ErrInvalidParam, "%s 需要 RFC3339 格式: %s", p.name, v))
			return nil, nil, false
		}
		*p.dst = &t
	}
	return start, end, true
}

// fail 输出统一错误响应，附带请求ID便于对照访问日志
func (r *Router) fail(c *gin.Context, err *errors.AppError) {
	requestID, _ := middleware.GetRequestID(c)
	if err.HTTPStatus() >= http.StatusInternalServerError {
		r.log.Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", requestID),
			zap.Error(err))
	}
	resp := errors.NewErrorResponse(err)
	resp.RequestID = requestID
	c.JSON(err.HTTPStatus(), resp)
}

// Handler 返回 http.Handler，供 http.Server 使用
func (r *Router) Handler() http.Handler {
	return r.engine
}
