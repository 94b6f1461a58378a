package hardware

import (
	"github.com/tarm/serial"
	"github.com/wfunc/car-dash/internal/errors"
	"github.com/wfunc/car-dash/internal/logger"
	"go.uber.org/zap"
)

// SerialReader 串口读数源
type SerialReader struct {
	*LineReader
	port *serial.Port
}

// OpenSerial 打开串口并开始按行读取
//
// 打开失败返回 ErrSerialPortOpen，调用方应当视为启动期致命错误。
func OpenSerial(cfg *SerialConfig) (*SerialReader, error) {
	port, err := serial.OpenPort(portConfig(cfg))
	if err != nil {
		logger.WithModule("serial").Error("打开串口失败",
			zap.String("port", cfg.Port),
			zap.Int("baud_rate", cfg.BaudRate),
			zap.Error(err))
		return nil, errors.Wrapf(err, errors.ErrSerialPortOpen, "open %s", cfg.Port)
	}

	logger.WithModule("serial").Info("串口连接成功",
		zap.String("port", cfg.Port),
		zap.Int("baud_rate", cfg.BaudRate))

	return &SerialReader{
		// 设置了读超时时，串口在无数据时返回 io.EOF
		LineReader: NewLineReader(cfg.Port, port, cfg.ReadTimeout > 0),
		port:       port,
	}, nil
}

// portConfig 转换为 tarm/serial 配置
func portConfig(cfg *SerialConfig) *serial.Config {
	// 解析校验位
	parity := serial.ParityNone
	switch cfg.Parity {
	case "O", "odd":
		parity = serial.ParityOdd
	case "E", "even":
		parity = serial.ParityEven
	case "M", "mark":
		parity = serial.ParityMark
	case "S", "space":
		parity = serial.ParitySpace
	}

	stopBits := serial.Stop1
	switch cfg.StopBits {
	case 2:
		stopBits = serial.Stop2
	case 15:
		stopBits = serial.Stop1Half
	}

	size := byte(cfg.DataBits)
	if size == 0 {
		size = serial.DefaultSize
	}

	return &serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.BaudRate,
		Size:        size,
		Parity:      parity,
		StopBits:    stopBits,
		ReadTimeout: cfg.ReadTimeout,
	}
}
