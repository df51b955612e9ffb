package gps

import (
	"context"
	"palace-guide/model"
	"palace-guide/utils"
	"sync"
	"time"
)

// OrientationEvent 设备方向传感器事件
// iOS Safari 提供 webkitCompassHeading; 其他浏览器只有 alpha
type OrientationEvent struct {
	WebkitCompassHeading *float64 `json:"webkitCompassHeading,omitempty"`
	Alpha                *float64 `json:"alpha,omitempty"`
}

// Compass 维护最近一次罗盘方位, 由生产者 goroutine 写入, 采样器读取
type Compass struct {
	mu      sync.RWMutex
	isIOS   bool
	heading float64
	ok      bool
	updated time.Time
}

// NewCompass 按设备类型创建罗盘 (Android 的 alpha 方向相反)
func NewCompass(deviceType string) *Compass {
	return &Compass{isIOS: deviceType == model.DeviceIOS}
}

// Observe 处理一次方向事件, 返回归一化到 [0,360) 的方位
func (c *Compass) Observe(ev OrientationEvent) (float64, bool) {
	var heading float64
	switch {
	case ev.WebkitCompassHeading != nil:
		heading = *ev.WebkitCompassHeading
	case ev.Alpha != nil && c.isIOS:
		heading = *ev.Alpha
	case ev.Alpha != nil:
		heading = 360 - *ev.Alpha
	default:
		return 0, false
	}
	heading = utils.NormalizeHeading(heading)

	c.mu.Lock()
	c.heading = heading
	c.ok = true
	c.updated = time.Now()
	c.mu.Unlock()
	return heading, true
}

// Heading 最近一次方位; 尚无数据时 ok 为 false
func (c *Compass) Heading() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.heading, c.ok
}

// UpdatedAt 最近一次更新时间
func (c *Compass) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

// Run 持续消费方向事件, 直到 ctx 取消或通道关闭
func (c *Compass) Run(ctx context.Context, events <-chan OrientationEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.Observe(ev)
		}
	}
}
