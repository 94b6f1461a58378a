package gauge

import "image/color"

// DoorLock 门锁状态指示
type DoorLock struct {
	Width, Height float64

	locked bool
}

// NewDoorLock 创建门锁指示，初始为上锁
func NewDoorLock() *DoorLock {
	return &DoorLock{Width: 300, Height: 50, locked: true}
}

// SetLocked 无条件覆盖门锁状态
func (d *DoorLock) SetLocked(locked bool) {
	d.locked = locked
}

// Locked 当前门锁状态
func (d *DoorLock) Locked() bool {
	return d.locked
}

// Size 组件尺寸
func (d *DoorLock) Size() (float64, float64) {
	return d.Width, d.Height
}

// Label 状态文字
func (d *DoorLock) Label() string {
	if d.locked {
		return "Doors Locked"
	}
	return "Doors Unlocked"
}

// Fill 状态背景色
func (d *DoorLock) Fill() color.Color {
	if d.locked {
		return ColorGreen
	}
	return ColorRed
}

// Render 绘制状态标签
func (d *DoorLock) Render(c Canvas) {
	box := Rect{X: 30, Y: 10, W: d.Width - 60, H: d.Height - 20}
	c.FillRect(box, d.Fill())
	c.Text(Point{X: d.Width / 2, Y: d.Height / 2}, d.Label(), 16, ColorWhite)
}
