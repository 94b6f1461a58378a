package hardware

import (
	"time"

	"github.com/wfunc/car-dash/internal/config"
)

// SerialConfig 串口配置
type SerialConfig struct {
	Port        string        // 串口端口
	BaudRate    int           // 波特率
	DataBits    int           // 数据位
	StopBits    int           // 停止位
	Parity      string        // 校验位
	ReadTimeout time.Duration // 读取超时
}

// NewSerialConfig 由全局配置生成串口配置
func NewSerialConfig(cfg *config.SerialConfig) *SerialConfig {
	return &SerialConfig{
		Port:        cfg.Port,
		BaudRate:    cfg.BaudRate,
		DataBits:    cfg.DataBits,
		StopBits:    cfg.StopBits,
		Parity:      cfg.Parity,
		ReadTimeout: cfg.ReadTimeout,
	}
}

const (
	// maxLineLength 单行最大长度，超出的行按格式错误丢弃
	maxLineLength = 4096

	// defaultLineBuffer 行缓冲区容量
	defaultLineBuffer = 64
)
