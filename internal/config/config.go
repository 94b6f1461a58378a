package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config 全局配置结构体
type Config struct {
	Serial      SerialConfig      `mapstructure:"serial"`
	Poll        PollConfig        `mapstructure:"poll"`
	Display     DisplayConfig     `mapstructure:"display"`
	Gauge       GaugeConfig       `mapstructure:"gauge"`
	Temperature TemperatureConfig `mapstructure:"temperature"`
	Web         WebConfig         `mapstructure:"web"`
	Recorder    RecorderConfig    `mapstructure:"recorder"`
	Log         LogConfig         `mapstructure:"log"`
}

// SerialConfig 串口配置
type SerialConfig struct {
	Port        string        `mapstructure:"port"`
	BaudRate    int           `mapstructure:"baud_rate"`
	DataBits    int           `mapstructure:"data_bits"`
	StopBits    int           `mapstructure:"stop_bits"`
	Parity      string        `mapstructure:"parity"`
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	MockMode    bool          `mapstructure:"mock_mode"` // 使用模拟数据源，不打开真实串口
}

// PollConfig 轮询配置
type PollConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// DisplayConfig 窗口配置
type DisplayConfig struct {
	Title    string `mapstructure:"title"`
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
	Headless bool   `mapstructure:"headless"`
}

// GaugeConfig 转速表配置
type GaugeConfig struct {
	MaxRPM   int `mapstructure:"max_rpm"`
	TickStep int `mapstructure:"tick_step"`
}

// TemperatureConfig 温度条配置
type TemperatureConfig struct {
	Min     int `mapstructure:"min"`
	Max     int `mapstructure:"max"`
	Initial int `mapstructure:"initial"` // 收到第一条读数之前显示的温度
}

// WebConfig 远程镜像（HTTP/WebSocket）配置
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

// RecorderConfig 读数记录配置
type RecorderConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Driver        string        `mapstructure:"driver"`
	DSN           string        `mapstructure:"dsn"`
	LogLevel      string        `mapstructure:"log_level"`
	AutoMigrate   bool          `mapstructure:"auto_migrate"`
	BatchSize     int           `mapstructure:"batch_size"`     // 缓冲达到该条数立即写入
	FlushInterval time.Duration `mapstructure:"flush_interval"` // 定时写入间隔
	RetentionDays int           `mapstructure:"retention_days"` // 0 表示不清理
	MaxIdleConns  int           `mapstructure:"max_idle_conns"`
	MaxOpenConns  int           `mapstructure:"max_open_conns"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level   string            `mapstructure:"level"`
	Format  string            `mapstructure:"format"`
	Output  string            `mapstructure:"output"`
	File    LogFileConfig     `mapstructure:"file"`
	Modules map[string]string `mapstructure:"modules"`
}

// LogFileConfig 日志文件配置
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// Addr 返回HTTP监听地址
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

var (
	cfg  *Config
	once sync.Once
	mu   sync.RWMutex
	v    *viper.Viper
)

// Init 初始化全局配置
func Init(configPath string) error {
	var err error
	once.Do(func() {
		var loaded *Config
		v, loaded, err = load(configPath)
		if err != nil {
			return
		}
		mu.Lock()
		cfg = loaded
		mu.Unlock()
	})

	return err
}

// Load 读取配置文件并返回独立的配置实例（不影响全局配置）
func Load(configPath string) (*Config, error) {
	_, c, err := load(configPath)
	return c, err
}

func load(configPath string) (*viper.Viper, *Config, error) {
	vp := viper.New()

	// 设置配置文件路径
	if configPath != "" {
		vp.SetConfigFile(configPath)
	} else {
		vp.SetConfigName("config")
		vp.SetConfigType("yaml")
		vp.AddConfigPath("./config")
		vp.AddConfigPath(".")
	}

	// 设置环境变量前缀
	vp.SetEnvPrefix("CAR_DASH")
	vp.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vp.AutomaticEnv()

	setDefaults(vp)

	if err := vp.ReadInConfig(); err != nil {
		// 未找到配置文件时使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
	}

	c := &Config{}
	if err := vp.Unmarshal(c); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	return vp, c, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 串口默认配置
	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud_rate", 115200)
	v.SetDefault("serial.data_bits", 8)
	v.SetDefault("serial.stop_bits", 1)
	v.SetDefault("serial.parity", "N")
	v.SetDefault("serial.read_timeout", "1s")
	v.SetDefault("serial.mock_mode", false)

	v.SetDefault("poll.interval", "100ms")

	// 窗口默认配置
	v.SetDefault("display.title", "Car Instruments")
	v.SetDefault("display.width", 400)
	v.SetDefault("display.height", 600)
	v.SetDefault("display.headless", false)

	// 仪表默认配置
	v.SetDefault("gauge.max_rpm", 1000)
	v.SetDefault("gauge.tick_step", 200)
	v.SetDefault("temperature.min", -20)
	v.SetDefault("temperature.max", 150)
	v.SetDefault("temperature.initial", 20)

	v.SetDefault("web.enabled", false)
	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 8090)
	v.SetDefault("web.mode", "release")

	v.SetDefault("recorder.enabled", false)
	v.SetDefault("recorder.driver", "sqlite")
	v.SetDefault("recorder.dsn", "./data/car-dash.db")
	v.SetDefault("recorder.log_level", "warn")
	v.SetDefault("recorder.auto_migrate", true)
	v.SetDefault("recorder.batch_size", 100)
	v.SetDefault("recorder.flush_interval", "5s")
	v.SetDefault("recorder.retention_days", 7)
	v.SetDefault("recorder.max_idle_conns", 2)
	v.SetDefault("recorder.max_open_conns", 4)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.filename", "car-dash.log")
	v.SetDefault("log.file.max_size", 20)
	v.SetDefault("log.file.max_age", 14)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.compress", true)
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be positive, got %d", c.Serial.BaudRate)
	}
	if !c.Serial.MockMode && c.Serial.Port == "" {
		return fmt.Errorf("serial.port is required unless serial.mock_mode is set")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("poll.interval must be positive, got %s", c.Poll.Interval)
	}
	if c.Gauge.MaxRPM <= 0 {
		return fmt.Errorf("gauge.max_rpm must be positive, got %d", c.Gauge.MaxRPM)
	}
	if c.Gauge.TickStep <= 0 {
		return fmt.Errorf("gauge.tick_step must be positive, got %d", c.Gauge.TickStep)
	}
	if c.Temperature.Min >= c.Temperature.Max {
		return fmt.Errorf("temperature.min (%d) must be below temperature.max (%d)",
			c.Temperature.Min, c.Temperature.Max)
	}
	if c.Recorder.Enabled && c.Recorder.BatchSize <= 0 {
		return fmt.Errorf("recorder.batch_size must be positive, got %d", c.Recorder.BatchSize)
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("display size must be positive, got %dx%d", c.Display.Width, c.Display.Height)
	}
	return nil
}

// Get 获取配置实例
func Get() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Watch 监听配置文件变化
func Watch(callback func(*Config)) {
	if v == nil {
		return
	}
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		newCfg := &Config{}
		if err := v.Unmarshal(newCfg); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}
		if err := newCfg.Validate(); err != nil {
			fmt.Printf("配置重载失败: %v\n", err)
			return
		}

		mu.Lock()
		cfg = newCfg
		mu.Unlock()

		if callback != nil {
			callback(newCfg)
		}
	})
}

// ConfigFile 返回正在使用的配置文件路径
func ConfigFile() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}
