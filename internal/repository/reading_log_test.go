package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/car-dash/internal/models"
	"github.com/wfunc/car-dash/internal/telemetry"
	"gorm.io/gorm"
)

// ReadingLogRepositoryTestSuite 读数记录仓储测试套件
type ReadingLogRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo ReadingLogRepository
	ctx  context.Context
	base time.Time
}

func (s *ReadingLogRepositoryTestSuite) SetupSuite() {
	s.db = SetupTestDB()
	s.repo = NewReadingLogRepository(s.db)
	s.ctx = context.Background()
	s.base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

func (s *ReadingLogRepositoryTestSuite) TearDownSuite() {
	CleanupTestDB(s.db)
}

func (s *ReadingLogRepositoryTestSuite) SetupTest() {
	s.db.Exec("DELETE FROM reading_logs")
}

// seed 写入 n 条记录，第 i 条的转速为 i*100、温度为 i*10，奇数条车门未锁
func (s *ReadingLogRepositoryTestSuite) seed(n int, session string) {
	logs := make([]*models.ReadingLog, 0, n)
	for i := 1; i <= n; i++ {
		snap := telemetry.Snapshot{
			Reading:   telemetry.Reading{RPM: i * 100, Locked: i%2 == 0, Temperature: i * 10},
			Updates:   uint64(i),
			UpdatedAt: s.base.Add(time.Duration(i) * time.Second),
		}
		logs = append(logs, models.NewReadingLog(snap, "/dev/ttyUSB0", session))
	}
	s.Require().NoError(s.repo.BatchCreate(s.ctx, logs))
}

func (s *ReadingLogRepositoryTestSuite) TestBatchCreateFillsTimes() {
	log := &models.ReadingLog{RPM: 640, Locked: true, Temperature: 70, Source: "simulated"}
	s.Require().NoError(s.repo.BatchCreate(s.ctx, []*models.ReadingLog{log}))

	s.NotZero(log.ID)
	s.False(log.CreatedAt.IsZero())
	s.Equal(log.CreatedAt.UnixMilli(), log.Timestamp)
	s.Equal(telemetry.Reading{RPM: 640, Locked: true, Temperature: 70}, log.Reading())
}

func (s *ReadingLogRepositoryTestSuite) TestBatchCreateEmpty() {
	s.NoError(s.repo.BatchCreate(s.ctx, nil))
}

func (s *ReadingLogRepositoryTestSuite) TestLatest() {
	s.seed(5, "a")

	logs, err := s.repo.Latest(s.ctx, 3)
	s.Require().NoError(err)
	s.Require().Len(logs, 3)
	s.Equal(500, logs[0].RPM)
	s.Equal(300, logs[2].RPM)
}

func (s *ReadingLogRepositoryTestSuite) TestListBySession() {
	s.seed(5, "a")
	s.seed(2, "b")

	page := NewPagination(2, 2)
	logs, err := s.repo.ListBySession(s.ctx, "a", page)
	s.Require().NoError(err)
	s.Equal(int64(5), page.Total)
	s.Require().Len(logs, 2)
	s.Equal(uint64(3), logs[0].Sequence)
	s.Equal(uint64(4), logs[1].Sequence)
}

func (s *ReadingLogRepositoryTestSuite) TestQuery() {
	s.seed(6, "a")

	unlocked := false
	logs, total, err := s.repo.Query(s.ctx, &models.ReadingLogQuery{Locked: &unlocked})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Len(logs, 3)

	minRPM := 400
	logs, total, err = s.repo.Query(s.ctx, &models.ReadingLogQuery{MinRPM: &minRPM, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(logs, 2)
	s.Equal(600, logs[0].RPM)

	end := s.base.Add(2 * time.Second)
	_, total, err = s.repo.Query(s.ctx, &models.ReadingLogQuery{EndTime: &end})
	s.Require().NoError(err)
	s.Equal(int64(2), total)
}

func (s *ReadingLogRepositoryTestSuite) TestStats() {
	stats, err := s.repo.Stats(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Zero(stats.TotalCount)

	s.seed(4, "a")
	stats, err = s.repo.Stats(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.Equal(int64(4), stats.TotalCount)
	s.Equal(int64(2), stats.UnlockedCount)
	s.Equal(400, stats.MaxRPM)
	s.InDelta(250.0, stats.AvgRPM, 1e-9)
	s.Equal(10, stats.MinTemp)
	s.Equal(40, stats.MaxTemp)
	s.InDelta(25.0, stats.AvgTemp, 1e-9)
}

func (s *ReadingLogRepositoryTestSuite) TestDeleteBefore() {
	s.seed(5, "a")

	n, err := s.repo.DeleteBefore(s.ctx, s.base.Add(3*time.Second))
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	_, err = s.repo.CleanupOldLogs(s.ctx, 0)
	s.Error(err)
}

func TestReadingLogRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(ReadingLogRepositoryTestSuite))
}
