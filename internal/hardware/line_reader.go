package hardware

import (
	"bytes"
	"errors"
	"io"
	"sync"

	"github.com/wfunc/car-dash/internal/logger"
	"go.uber.org/zap"
)

// LineReader 把字节流切分为行，并提供非阻塞的读取接口
//
// 只有内部的读取协程会阻塞在设备上；调用方通过 Available/ReadLine
// 检查和取出已缓冲的完整行。
type LineReader struct {
	name string
	rc   io.ReadCloser

	// retryEOF 为 true 时把 io.EOF 视为"暂无数据"（串口读超时的表现）
	retryEOF bool

	lines     chan string
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error

	logger *zap.Logger
}

// NewLineReader 创建行读取器并启动读取协程
func NewLineReader(name string, rc io.ReadCloser, retryEOF bool) *LineReader {
	r := &LineReader{
		name:     name,
		rc:       rc,
		retryEOF: retryEOF,
		lines:    make(chan string, defaultLineBuffer),
		done:     make(chan struct{}),
		logger:   logger.WithModule("serial"),
	}
	go r.pump()
	return r
}

// Name 返回数据源标识
func (r *LineReader) Name() string {
	return r.name
}

// Available 是否有已缓冲的完整行
func (r *LineReader) Available() bool {
	return len(r.lines) > 0
}

// ReadLine 非阻塞读取一行
func (r *LineReader) ReadLine() (string, bool) {
	select {
	case line, ok := <-r.lines:
		if !ok {
			return "", false
		}
		return line, true
	default:
		return "", false
	}
}

// Err 返回读取协程退出的原因（正常关闭或到达流末尾时为 nil）
func (r *LineReader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Close 停止读取并关闭底层设备
func (r *LineReader) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.rc.Close()
	})
	return err
}

func (r *LineReader) closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

// pump 读取协程
func (r *LineReader) pump() {
	defer close(r.lines)

	buf := make([]byte, 256)
	var pending []byte
	discarding := false

	for {
		n, err := r.rc.Read(buf)
		if n > 0 {
			pending = append(pending, buf[:n]...)
			for {
				i := bytes.IndexByte(pending, '\n')
				if i < 0 {
					break
				}
				line := bytes.TrimSuffix(pending[:i], []byte{'\r'})
				pending = pending[i+1:]

				if discarding {
					// 超长行的尾部
					discarding = false
					continue
				}
				if !r.deliver(string(line)) {
					return
				}
			}

			if len(pending) > maxLineLength {
				r.logger.Debug("丢弃超长行", zap.String("port", r.name), zap.Int("size", len(pending)))
				pending = pending[:0]
				discarding = true
			}
		}

		if err == nil {
			continue
		}
		if r.closed() {
			return
		}
		if errors.Is(err, io.EOF) {
			if r.retryEOF {
				continue
			}
			return
		}

		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		r.logger.Warn("串口读取停止", zap.String("port", r.name), zap.Error(err))
		return
	}
}

// deliver 投递一行，缓冲区满时阻塞，直到被消费或读取器关闭
func (r *LineReader) deliver(line string) bool {
	if len(line) > maxLineLength {
		return true
	}
	select {
	case r.lines <- line:
		return true
	case <-r.done:
		return false
	}
}
