package display

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/wfunc/car-dash/internal/dashboard"
	"github.com/wfunc/car-dash/internal/logger"
	"go.uber.org/zap"
)

// RunHeadless 无窗口运行轮询循环，画面只通过 Web 镜像输出
func RunHeadless(ctx context.Context, cluster *dashboard.Cluster, interval time.Duration) error {
	log := logger.WithModule("display")
	log.Info("以无窗口模式运行", zap.Duration("interval", interval))

	err := dashboard.Run(ctx, cluster, interval)
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
