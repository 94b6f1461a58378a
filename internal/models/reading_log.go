package models

import (
	"time"

	"github.com/wfunc/car-dash/internal/telemetry"
	"gorm.io/gorm"
)

// ReadingLog 仪表读数记录
type ReadingLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index;not null" json:"created_at"`

	// 读数（已限幅的显示值）
	RPM         int  `gorm:"not null" json:"rpm"`
	Locked      bool `gorm:"not null" json:"locked"`
	Temperature int  `gorm:"not null" json:"temperature"`

	// 关联信息
	Source    string `gorm:"type:varchar(100);index" json:"source"`    // 数据源（串口名或 simulated）
	SessionID string `gorm:"type:varchar(64);index" json:"session_id"` // 进程会话ID
	Sequence  uint64 `gorm:"not null" json:"sequence"`                 // 本次运行中的更新序号
	Timestamp int64  `gorm:"index" json:"timestamp"`                   // 读数时间（Unix毫秒）
}

// TableName 指定表名
func (ReadingLog) TableName() string {
	return "reading_logs"
}

// BeforeCreate 创建前的钩子
func (r *ReadingLog) BeforeCreate(tx *gorm.DB) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Timestamp == 0 {
		r.Timestamp = r.CreatedAt.UnixMilli()
	}
	return nil
}

// NewReadingLog 由读数快照创建记录
func NewReadingLog(snap telemetry.Snapshot, source, sessionID string) *ReadingLog {
	log := &ReadingLog{
		RPM:         snap.RPM,
		Locked:      snap.Locked,
		Temperature: snap.Temperature,
		Source:      source,
		SessionID:   sessionID,
		Sequence:    snap.Updates,
	}
	if !snap.UpdatedAt.IsZero() {
		log.CreatedAt = snap.UpdatedAt
		log.Timestamp = snap.UpdatedAt.UnixMilli()
	}
	return log
}

// Reading 转回读数
func (r *ReadingLog) Reading() telemetry.Reading {
	return telemetry.Reading{RPM: r.RPM, Locked: r.Locked, Temperature: r.Temperature}
}

// ReadingLogQuery 查询参数
type ReadingLogQuery struct {
	Source    string     `json:"source,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	Locked    *bool      `json:"locked,omitempty"`
	MinRPM    *int       `json:"min_rpm,omitempty"`
	MinTemp   *int       `json:"min_temp,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}

// ReadingLogStats 读数统计
type ReadingLogStats struct {
	TotalCount    int64   `json:"total_count"`
	UnlockedCount int64   `json:"unlocked_count"`
	MaxRPM        int     `json:"max_rpm"`
	AvgRPM        float64 `json:"avg_rpm"`
	MinTemp       int     `json:"min_temp"`
	MaxTemp       int     `json:"max_temp"`
	AvgTemp       float64 `json:"avg_temp"`
}
