package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/car-dash/internal/config"
	"github.com/wfunc/car-dash/internal/logger"
	"github.com/wfunc/car-dash/internal/models"
	"github.com/wfunc/car-dash/internal/repository"
	"github.com/wfunc/car-dash/internal/telemetry"
	"go.uber.org/zap"
)

// ReadingRecorder 读数记录服务
//
// 作为轮询循环的观察者接收读数，缓冲后由后台协程批量写入数据库。
// 缓冲通道满时丢弃读数，不阻塞轮询循环。
type ReadingRecorder struct {
	repo      repository.ReadingLogRepository
	logger    *zap.Logger
	source    string
	sessionID string

	batchSize     int
	flushInterval time.Duration
	retentionDays int

	buffer   []*models.ReadingLog
	bufferCh chan *models.ReadingLog
	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	mu      sync.Mutex
	dropped uint64
}

// NewReadingRecorder 创建读数记录服务并启动后台写入协程
func NewReadingRecorder(repo repository.ReadingLogRepository, cfg *config.RecorderConfig, source string) *ReadingRecorder {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	flushInterval := cfg.FlushInterval
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}

	r := &ReadingRecorder{
		repo:          repo,
		logger:        logger.WithModule("recorder"),
		source:        source,
		sessionID:     uuid.New().String(),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		retentionDays: cfg.RetentionDays,
		buffer:        make([]*models.ReadingLog, 0, batchSize),
		bufferCh:      make(chan *models.ReadingLog, batchSize*10),
		stopCh:        make(chan struct{}),
	}

	r.wg.Add(1)
	go r.backgroundWriter()

	return r
}

// SessionID 本次运行的会话ID
func (r *ReadingRecorder) SessionID() string {
	return r.sessionID
}

// OnReading 实现读数观察者
func (r *ReadingRecorder) OnReading(snap telemetry.Snapshot) {
	log := models.NewReadingLog(snap, r.source, r.sessionID)
	select {
	case r.bufferCh <- log:
	default:
		r.mu.Lock()
		r.dropped++
		r.mu.Unlock()
	}
}

// Dropped 因缓冲区满被丢弃的读数数量
func (r *ReadingRecorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// backgroundWriter 后台写入协程
func (r *ReadingRecorder) backgroundWriter() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	// 每天清理一次过期记录，启动时先清理一次
	cleanup := time.NewTicker(24 * time.Hour)
	defer cleanup.Stop()
	r.cleanup()

	for {
		select {
		case log := <-r.bufferCh:
			r.buffer = append(r.buffer, log)
			// 如果缓冲区满了，立即写入
			if len(r.buffer) >= r.batchSize {
				r.flushBuffer()
			}

		case <-ticker.C:
			r.flushBuffer()

		case <-cleanup.C:
			r.cleanup()

		case <-r.stopCh:
			// 退出前写入剩余的读数
		drain:
			for {
				select {
				case log := <-r.bufferCh:
					r.buffer = append(r.buffer, log)
				default:
					break drain
				}
			}
			r.flushBuffer()
			return
		}
	}
}

// flushBuffer 写入缓冲区的读数到数据库
func (r *ReadingRecorder) flushBuffer() {
	if len(r.buffer) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := r.repo.BatchCreate(ctx, r.buffer); err != nil {
		r.logger.Error("批量写入读数失败", zap.Int("count", len(r.buffer)), zap.Error(err))
	} else {
		r.logger.Debug("批量写入读数成功", zap.Int("count", len(r.buffer)))
	}

	// 清空缓冲区
	r.buffer = make([]*models.ReadingLog, 0, r.batchSize)
}

// cleanup 清理过期记录
func (r *ReadingRecorder) cleanup() {
	if r.retentionDays <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := r.repo.CleanupOldLogs(ctx, r.retentionDays)
	if err != nil {
		r.logger.Warn("清理过期读数失败", zap.Error(err))
		return
	}
	if n > 0 {
		r.logger.Info("已清理过期读数", zap.Int64("count", n), zap.Int("retention_days", r.retentionDays))
	}
}

// Latest 获取最新的读数记录
func (r *ReadingRecorder) Latest(ctx context.Context, limit int) ([]*models.ReadingLog, error) {
	return r.repo.Latest(ctx, limit)
}

// Query 条件查询读数记录
func (r *ReadingRecorder) Query(ctx context.Context, q *models.ReadingLogQuery) ([]*models.ReadingLog, int64, error) {
	return r.repo.Query(ctx, q)
}

// ListBySession 按会话分页获取读数记录
func (r *ReadingRecorder) ListBySession(ctx context.Context, sessionID string, pagination *repository.Pagination) ([]*models.ReadingLog, error) {
	return r.repo.ListBySession(ctx, sessionID, pagination)
}

// Stats 获取统计信息
func (r *ReadingRecorder) Stats(ctx context.Context, start, end *time.Time) (*models.ReadingLogStats, error) {
	return r.repo.Stats(ctx, start, end)
}

// Close 停止后台协程并写入剩余读数
func (r *ReadingRecorder) Close() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()
		if n := r.Dropped(); n > 0 {
			r.logger.Warn("记录缓冲区满，部分读数未保存", zap.Uint64("dropped", n))
		}
	})
}
