package display

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/wfunc/car-dash/internal/config"
	"github.com/wfunc/car-dash/internal/dashboard"
	"github.com/wfunc/car-dash/internal/errors"
	"github.com/wfunc/car-dash/internal/logger"
	"go.uber.org/zap"
)

// RunWindow 打开仪表窗口并阻塞到窗口关闭或 ctx 结束
//
// 轮询在 Update 中按调度器执行，与绘制运行在同一个协程。
func RunWindow(ctx context.Context, cfg *config.DisplayConfig, cluster *dashboard.Cluster, interval time.Duration) error {
	g := newWindowGame(ctx, cluster, interval)

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetTPS(60)

	logger.WithModule("display").Info("仪表窗口已打开",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Duration("interval", g.scheduler.Interval()),
	)

	if err := ebiten.RunGame(g); err != nil {
		return errors.Wrap(err, errors.ErrDisplayUnavailable, "窗口运行失败")
	}
	return nil
}

type windowGame struct {
	ctx       context.Context
	cluster   *dashboard.Cluster
	scheduler *dashboard.Scheduler
	texts     *textCache
	now       func() time.Time
}

func newWindowGame(ctx context.Context, cluster *dashboard.Cluster, interval time.Duration) *windowGame {
	return &windowGame{
		ctx:       ctx,
		cluster:   cluster,
		scheduler: dashboard.NewScheduler(interval),
		texts:     newTextCache(),
		now:       time.Now,
	}
}

func (g *windowGame) Update() error {
	if g.ctx.Err() != nil {
		g.scheduler.Stop()
		return ebiten.Termination
	}
	now := g.now()
	if !g.scheduler.Running() {
		g.scheduler.Start(now)
	}
	if g.scheduler.Due(now) {
		g.cluster.Tick()
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	g.cluster.Render(&ebitenCanvas{dst: screen, texts: g.texts})
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cluster.Size()
}
