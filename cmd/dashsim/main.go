// dashsim 向串口循环写入模拟读数行，用于在没有车辆的情况下联调仪表
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tarm/serial"
	"github.com/wfunc/car-dash/internal/hardware"
)

func main() {
	var (
		portName = flag.String("port", "/dev/ttyS3", "串口设备")
		baud     = flag.Int("baud", 115200, "波特率")
		interval = flag.Duration("interval", 100*time.Millisecond, "发送间隔")
		count    = flag.Int("count", 0, "发送行数，0 表示一直发送")
		noTemp   = flag.Bool("no-temp", false, "只发送 rpm,door 两个字段")
		garbage  = flag.Int("garbage", 0, "每 N 行插入一行非法数据，0 表示不插入")
		maxRPM   = flag.Int("max-rpm", 1000, "最大转速")
		minTemp  = flag.Int("min-temp", -20, "最低温度")
		maxTemp  = flag.Int("max-temp", 150, "最高温度")
	)
	flag.Parse()

	config := &serial.Config{
		Name:        *portName,
		Baud:        *baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: time.Second,
	}

	port, err := serial.OpenPort(config)
	if err != nil {
		log.Fatalf("无法打开串口: %v", err)
	}
	defer port.Close()

	fmt.Println("=== 仪表数据模拟器启动 ===")
	fmt.Printf("串口: %s @ %d 8N1\n", *portName, *baud)
	fmt.Printf("间隔: %s\n", *interval)
	fmt.Println("----------------------------------------")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	source := hardware.NewSimulatedSource(*maxRPM, *minTemp, *maxTemp)
	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	sent := 0
	for *count == 0 || sent < *count {
		select {
		case <-sigCh:
			fmt.Printf("\n已发送 %d 行，退出\n", sent)
			return
		case <-ticker.C:
		}

		line, _ := source.ReadLine()
		if *noTemp {
			line = dropTemperature(line)
		}
		if *garbage > 0 && sent > 0 && sent%*garbage == 0 {
			line = "garbage"
		}

		if _, err := port.Write([]byte(line + "\n")); err != nil {
			log.Printf("发送失败: %v", err)
			continue
		}
		sent++
		fmt.Printf("\r[发送 %d] %-16s", sent, line)
	}
	fmt.Printf("\n已发送 %d 行\n", sent)
}

// dropTemperature 去掉第三个字段
func dropTemperature(line string) string {
	commas := 0
	for i, r := range line {
		if r == ',' {
			commas++
			if commas == 2 {
				return line[:i]
			}
		}
	}
	return line
}
