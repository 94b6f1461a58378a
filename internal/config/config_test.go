package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "serial:\n  port: /dev/ttyACM0\n")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", c.Serial.Port)
	assert.Equal(t, 115200, c.Serial.BaudRate)
	assert.Equal(t, 100*time.Millisecond, c.Poll.Interval)
	assert.Equal(t, "Car Instruments", c.Display.Title)
	assert.Equal(t, 400, c.Display.Width)
	assert.Equal(t, 600, c.Display.Height)
	assert.Equal(t, 1000, c.Gauge.MaxRPM)
	assert.Equal(t, 200, c.Gauge.TickStep)
	assert.Equal(t, -20, c.Temperature.Min)
	assert.Equal(t, 150, c.Temperature.Max)
	assert.Equal(t, 20, c.Temperature.Initial)
	assert.False(t, c.Web.Enabled)
	assert.Equal(t, "0.0.0.0:8090", c.Web.Addr())
	assert.Equal(t, "sqlite", c.Recorder.Driver)
	assert.Equal(t, 100, c.Recorder.BatchSize)
	assert.Equal(t, 5*time.Second, c.Recorder.FlushInterval)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
serial:
  port: COM4
  baud_rate: 9600
poll:
  interval: 250ms
gauge:
  max_rpm: 8000
  tick_step: 1000
web:
  enabled: true
  port: 9000
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "COM4", c.Serial.Port)
	assert.Equal(t, 9600, c.Serial.BaudRate)
	assert.Equal(t, 250*time.Millisecond, c.Poll.Interval)
	assert.Equal(t, 8000, c.Gauge.MaxRPM)
	assert.True(t, c.Web.Enabled)
	assert.Equal(t, 9000, c.Web.Port)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CAR_DASH_GAUGE_MAX_RPM", "6000")
	path := writeConfig(t, "serial:\n  port: /dev/ttyUSB1\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6000, c.Gauge.MaxRPM)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Serial:      SerialConfig{Port: "/dev/ttyUSB0", BaudRate: 115200},
			Poll:        PollConfig{Interval: 100 * time.Millisecond},
			Display:     DisplayConfig{Width: 400, Height: 600},
			Gauge:       GaugeConfig{MaxRPM: 1000, TickStep: 200},
			Temperature: TemperatureConfig{Min: -20, Max: 150, Initial: 20},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"零波特率", func(c *Config) { c.Serial.BaudRate = 0 }},
		{"缺少端口", func(c *Config) { c.Serial.Port = "" }},
		{"轮询间隔为零", func(c *Config) { c.Poll.Interval = 0 }},
		{"最大转速为零", func(c *Config) { c.Gauge.MaxRPM = 0 }},
		{"刻度步长为负", func(c *Config) { c.Gauge.TickStep = -1 }},
		{"温度范围颠倒", func(c *Config) { c.Temperature.Min = 200 }},
		{"窗口尺寸为零", func(c *Config) { c.Display.Width = 0 }},
		{"记录批量为零", func(c *Config) { c.Recorder.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	t.Run("模拟模式无需端口", func(t *testing.T) {
		c := valid()
		c.Serial.Port = ""
		c.Serial.MockMode = true
		assert.NoError(t, c.Validate())
	})
}
