package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/wfunc/car-dash/internal/api"
	"github.com/wfunc/car-dash/internal/config"
	"github.com/wfunc/car-dash/internal/dashboard"
	"github.com/wfunc/car-dash/internal/database"
	"github.com/wfunc/car-dash/internal/display"
	"github.com/wfunc/car-dash/internal/errors"
	"github.com/wfunc/car-dash/internal/gauge"
	"github.com/wfunc/car-dash/internal/hardware"
	"github.com/wfunc/car-dash/internal/logger"
	"github.com/wfunc/car-dash/internal/repository"
	"github.com/wfunc/car-dash/internal/service"
	ws "github.com/wfunc/car-dash/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 版本信息
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 5 * time.Second

// App 进程内的全部组件
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	cluster  *dashboard.Cluster
	db       *gorm.DB
	recorder *service.ReadingRecorder
	hub      *ws.Hub
	http     *http.Server

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// 加载配置
	if err := config.Init(*configPath); err != nil {
		fmt.Printf("加载配置失败: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Get()

	// 初始化日志系统
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Printf("初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Cleanup()

	printStartInfo(cfg)

	app := NewApp(cfg)

	if err := app.Start(); err != nil {
		if errors.IsCritical(err) {
			logger.Fatal("启动失败", zap.Error(err))
		}
		logger.Error("启动失败", zap.Error(err))
		logger.Cleanup()
		os.Exit(1)
	}

	go app.waitForSignal()

	runErr := app.Run()

	if err := app.Shutdown(); err != nil {
		logger.Error("关闭失败", zap.Error(err))
	}

	if runErr != nil {
		logger.Error("仪表运行失败", zap.Error(runErr))
		logger.Cleanup()
		os.Exit(1)
	}

	logger.Info("已安全退出")
}

// NewApp 创建应用实例
func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:    cfg,
		logger: logger.GetLogger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start 打开数据源并启动可选的记录器和远程镜像
func (a *App) Start() error {
	source, err := a.openSource()
	if err != nil {
		return err
	}

	a.cluster = dashboard.NewCluster(source, dashboard.Options{
		Layout: gauge.LayoutOptions{
			Width:              a.cfg.Display.Width,
			Height:             a.cfg.Display.Height,
			MaxRPM:             a.cfg.Gauge.MaxRPM,
			TickStep:           a.cfg.Gauge.TickStep,
			MinTemp:            a.cfg.Temperature.Min,
			MaxTemp:            a.cfg.Temperature.Max,
			InitialTemperature: a.cfg.Temperature.Initial,
		},
	})

	if a.cfg.Recorder.Enabled {
		if err := a.startRecorder(); err != nil {
			// 记录器不影响仪表显示
			a.logger.Error("读数记录器启动失败，继续运行", zap.Error(err))
		}
	}

	if a.cfg.Web.Enabled {
		a.startWeb()
	}

	// 监听配置变化，只有日志级别支持热更新
	config.Watch(func(newCfg *config.Config) {
		logger.ApplyLevels(&newCfg.Log)
		a.logger.Info("配置已更新", zap.String("log_level", newCfg.Log.Level))
	})

	a.logger.Info("仪表启动成功",
		zap.String("version", Version),
		zap.String("source", source.Name()),
		zap.Duration("poll_interval", a.cfg.Poll.Interval),
		zap.Bool("recorder", a.recorder != nil),
		zap.Bool("web", a.hub != nil),
	)
	return nil
}

// openSource 打开串口或模拟数据源
func (a *App) openSource() (hardware.Source, error) {
	if a.cfg.Serial.MockMode {
		a.logger.Info("使用模拟数据源")
		return hardware.NewSimulatedSource(a.cfg.Gauge.MaxRPM, a.cfg.Temperature.Min, a.cfg.Temperature.Max), nil
	}
	reader, err := hardware.OpenSerial(hardware.NewSerialConfig(&a.cfg.Serial))
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// startRecorder 打开数据库并注册读数记录器
func (a *App) startRecorder() error {
	db, err := database.Open(&a.cfg.Recorder)
	if err != nil {
		return err
	}

	if a.cfg.Recorder.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			database.Close(db)
			return errors.Wrap(err, errors.ErrDatabaseConnect, "数据库迁移失败")
		}
	}

	a.db = db
	a.recorder = service.NewReadingRecorder(
		repository.NewReadingLogRepository(db),
		&a.cfg.Recorder,
		a.cluster.Source().Name(),
	)
	a.cluster.AddObserver(a.recorder)

	a.logger.Info("读数记录器已启动",
		zap.String("driver", a.cfg.Recorder.Driver),
		zap.String("session_id", a.recorder.SessionID()))
	return nil
}

// startWeb 启动 WebSocket Hub 和 HTTP 服务
func (a *App) startWeb() {
	a.hub = ws.NewHub(logger.WithModule("web"), a.cluster.Snapshot)
	a.cluster.AddObserver(a.hub)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.hub.Run(a.ctx)
	}()

	opts := api.RouterOptions{
		Mode:      a.cfg.Web.Mode,
		Source:    a.cluster.Source().Name(),
		Dashboard: a.cluster,
		Hub:       a.hub,
		Logger:    logger.WithModule("web"),
	}
	if a.recorder != nil {
		opts.History = a.recorder
	}
	router := api.NewRouter(opts)

	a.http = &http.Server{
		Addr:              a.cfg.Web.Addr(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.logger.Info("远程镜像已启动", zap.String("addr", a.http.Addr))
		if err := a.http.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP服务异常退出", zap.Error(err))
		}
	}()
}

// Run 在主协程运行仪表，直到窗口关闭或收到退出信号
func (a *App) Run() error {
	if a.cfg.Display.Headless {
		return display.RunHeadless(a.ctx, a.cluster, a.cfg.Poll.Interval)
	}
	return display.RunWindow(a.ctx, &a.cfg.Display, a.cluster, a.cfg.Poll.Interval)
}

// waitForSignal 等待退出信号
func (a *App) waitForSignal() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh,
		syscall.SIGINT,  // Ctrl+C
		syscall.SIGTERM, // kill命令
		syscall.SIGQUIT, // Ctrl+\
	)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.logger.Info("收到退出信号", zap.String("signal", sig.String()))
		a.cancel()
	case <-a.ctx.Done():
	}
}

// Shutdown 按依赖逆序关闭各组件
func (a *App) Shutdown() error {
	a.logger.Info("正在关闭...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.http != nil {
		if err := a.http.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("HTTP服务关闭失败", zap.Error(err))
		}
	}

	// 取消主上下文，触发 Hub 等协程退出
	a.cancel()

	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.logger.Warn("关闭超时，强制退出")
		return errors.New(errors.ErrTimeout, "关闭超时")
	}

	if a.recorder != nil {
		a.recorder.Close()
		a.logger.Info("读数记录器已关闭", zap.Uint64("dropped", a.recorder.Dropped()))
	}
	if a.db != nil {
		if err := database.Close(a.db); err != nil {
			a.logger.Error("关闭数据库失败", zap.Error(err))
		}
	}

	if err := a.cluster.Close(); err != nil {
		a.logger.Warn("关闭数据源失败", zap.Error(err))
	}
	return nil
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("汽车仪表盘\n")
	fmt.Printf("版本: %s\n", Version)
	fmt.Printf("构建时间: %s\n", BuildTime)
	fmt.Printf("Git提交: %s\n", GitCommit)
	fmt.Printf("Go版本: %s\n", runtime.Version())
	fmt.Printf("操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("汽车仪表盘")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  car-dash [选项]")
	fmt.Println()
	fmt.Println("选项:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("环境变量:")
	fmt.Println("  CAR_DASH_SERIAL_PORT       串口设备，覆盖 serial.port")
	fmt.Println("  CAR_DASH_SERIAL_MOCK_MODE  使用模拟数据源")
	fmt.Println("  CAR_DASH_LOG_LEVEL         日志级别")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  car-dash -config=/path/to/config.yaml")
	fmt.Println("  CAR_DASH_SERIAL_MOCK_MODE=true car-dash")
	fmt.Println("  car-dash -version")
}

// printStartInfo 打印启动信息
func printStartInfo(cfg *config.Config) {
	banner := `
╔═══════════════════════════════════════════════╗
║                                               ║
║               CAR  INSTRUMENTS                ║
║                                               ║
║        转速表  ·  温度条  ·  车门锁状态       ║
║                                               ║
╚═══════════════════════════════════════════════╝
`
	fmt.Println(banner)
	source := cfg.Serial.Port
	if cfg.Serial.MockMode {
		source = "simulated"
	}
	fmt.Printf("版本: %s | 数据源: %s | PID: %d\n", Version, source, os.Getpid())
	fmt.Printf("配置文件: %s\n", config.ConfigFile())
	fmt.Println("═══════════════════════════════════════════════")
}
