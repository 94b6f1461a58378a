package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/car-dash/internal/models"
	"gorm.io/gorm"
)

// ReadingLogRepository 读数记录仓储接口
type ReadingLogRepository interface {
	BatchCreate(ctx context.Context, logs []*models.ReadingLog) error
	Latest(ctx context.Context, limit int) ([]*models.ReadingLog, error)
	ListBySession(ctx context.Context, sessionID string, pagination *Pagination) ([]*models.ReadingLog, error)
	Query(ctx context.Context, q *models.ReadingLogQuery) ([]*models.ReadingLog, int64, error)
	Stats(ctx context.Context, start, end *time.Time) (*models.ReadingLogStats, error)
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
	CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error)
}

// readingLogRepo 读数记录仓储实现
type readingLogRepo struct {
	*BaseRepo
}

// NewReadingLogRepository 创建读数记录仓储
func NewReadingLogRepository(db *gorm.DB) ReadingLogRepository {
	return &readingLogRepo{BaseRepo: NewBaseRepo(db)}
}

// BatchCreate 批量创建记录
func (r *readingLogRepo) BatchCreate(ctx context.Context, logs []*models.ReadingLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 100).Error
}

// Latest 获取最新的记录，按时间倒序
func (r *readingLogRepo) Latest(ctx context.Context, limit int) ([]*models.ReadingLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []*models.ReadingLog
	err := r.db.WithContext(ctx).
		Order("timestamp DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// ListBySession 按会话分页获取记录，按序号升序
func (r *readingLogRepo) ListBySession(ctx context.Context, sessionID string, pagination *Pagination) ([]*models.ReadingLog, error) {
	var logs []*models.ReadingLog
	db := r.db.WithContext(ctx).Model(&models.ReadingLog{}).
		Where("session_id = ?", sessionID).
		Session(&gorm.Session{})

	if err := db.Count(&pagination.Total).Error; err != nil {
		return nil, err
	}
	err := db.Scopes(Paginate(pagination)).
		Order("sequence ASC").
		Find(&logs).Error
	return logs, err
}

// Query 条件查询
func (r *readingLogRepo) Query(ctx context.Context, q *models.ReadingLogQuery) ([]*models.ReadingLog, int64, error) {
	db := r.filter(r.db.WithContext(ctx).Model(&models.ReadingLog{}), q.StartTime, q.EndTime)

	if q.Source != "" {
		db = db.Where("source = ?", q.Source)
	}
	if q.SessionID != "" {
		db = db.Where("session_id = ?", q.SessionID)
	}
	if q.Locked != nil {
		db = db.Where("locked = ?", *q.Locked)
	}
	if q.MinRPM != nil {
		db = db.Where("rpm >= ?", *q.MinRPM)
	}
	if q.MinTemp != nil {
		db = db.Where("temperature >= ?", *q.MinTemp)
	}

	db = db.Session(&gorm.Session{})

	// 获取总数
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Order("timestamp DESC, id DESC")
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}

	var logs []*models.ReadingLog
	if err := db.Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// Stats 统计时间范围内的读数
func (r *readingLogRepo) Stats(ctx context.Context, start, end *time.Time) (*models.ReadingLogStats, error) {
	stats := &models.ReadingLogStats{}
	base := func() *gorm.DB {
		return r.filter(r.db.WithContext(ctx).Model(&models.ReadingLog{}), start, end)
	}

	if err := base().Count(&stats.TotalCount).Error; err != nil {
		return nil, err
	}
	if stats.TotalCount == 0 {
		return stats, nil
	}

	if err := base().Where("locked = ?", false).Count(&stats.UnlockedCount).Error; err != nil {
		return nil, err
	}

	type aggregate struct {
		MaxRPM  int
		AvgRPM  float64
		MinTemp int
		MaxTemp int
		AvgTemp float64
	}
	var agg aggregate
	if err := base().
		Select("MAX(rpm) AS max_rpm, AVG(rpm) AS avg_rpm, MIN(temperature) AS min_temp, MAX(temperature) AS max_temp, AVG(temperature) AS avg_temp").
		Scan(&agg).Error; err != nil {
		return nil, err
	}
	stats.MaxRPM = agg.MaxRPM
	stats.AvgRPM = agg.AvgRPM
	stats.MinTemp = agg.MinTemp
	stats.MaxTemp = agg.MaxTemp
	stats.AvgTemp = agg.AvgTemp
	return stats, nil
}

// DeleteBefore 删除指定时间之前的记录
func (r *readingLogRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("timestamp < ?", before.UnixMilli()).
		Delete(&models.ReadingLog{})
	return result.RowsAffected, result.Error
}

// CleanupOldLogs 清理记录（保留最近N天的数据）
func (r *readingLogRepo) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, fmt.Errorf("retention days must be greater than 0")
	}
	return r.DeleteBefore(ctx, time.Now().AddDate(0, 0, -retentionDays))
}

// filter 时间范围过滤
func (r *readingLogRepo) filter(db *gorm.DB, start, end *time.Time) *gorm.DB {
	if start != nil {
		db = db.Where("timestamp >= ?", start.UnixMilli())
	}
	if end != nil {
		db = db.Where("timestamp <= ?", end.UnixMilli())
	}
	return db
}
