// Package gps 定位采集: 顺序采样、逐次滤波、输出融合定位
package gps

import (
	"context"
	"errors"
	"palace-guide/model"
	"strings"
	"sync"
	"time"
)

// ErrNoLocationCapability 设备不支持定位 (或未授权)
var ErrNoLocationCapability = errors.New("location capability unavailable")

// ErrReplayExhausted 回放数据已用完
var ErrReplayExhausted = errors.New("replay samples exhausted")

// PositionOptions 单次定位请求参数
type PositionOptions struct {
	EnableHighAccuracy bool
	Timeout            time.Duration
	MaximumAge         time.Duration // 0 表示不使用缓存, 每次都是新的传感器读数
}

// LocationProvider 平台定位服务 ("get current position")
type LocationProvider interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (model.RawReading, error)
}

// HeadingSource 连续的罗盘方位流, 返回最近一次方位
type HeadingSource interface {
	Heading() (float64, bool)
}

// ReplaySample 一次预先录制的读数; Delay 模拟传感器响应时间
type ReplaySample struct {
	Reading model.RawReading
	Err     error
	Delay   time.Duration
}

// ReplayProvider 按顺序回放录制好的读数
// 用于服务端处理客户端上报的批量采样, 以及测试
type ReplayProvider struct {
	mu      sync.Mutex
	samples []ReplaySample
	next    int
}

// NewReplayProvider 由录制样本创建回放器
func NewReplayProvider(samples ...ReplaySample) *ReplayProvider {
	return &ReplayProvider{samples: samples}
}

// ReadingsProvider 由一组读数创建回放器
func ReadingsProvider(readings []model.RawReading) *ReplayProvider {
	samples := make([]ReplaySample, len(readings))
	for i, r := range readings {
		samples[i] = ReplaySample{Reading: r}
	}
	return NewReplayProvider(samples...)
}

// CurrentPosition 返回下一条样本
func (p *ReplayProvider) CurrentPosition(ctx context.Context, _ PositionOptions) (model.RawReading, error) {
	p.mu.Lock()
	if p.next >= len(p.samples) {
		p.mu.Unlock()
		return model.RawReading{}, ErrReplayExhausted
	}
	s := p.samples[p.next]
	p.next++
	p.mu.Unlock()

	if s.Delay > 0 {
		t := time.NewTimer(s.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return model.RawReading{}, ctx.Err()
		case <-t.C:
		}
	}
	return s.Reading, s.Err
}

// Served 已经返回过的样本数
func (p *ReplayProvider) Served() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next
}

// DetectDeviceType 根据 User-Agent 判断设备类型
func DetectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ipod"):
		return model.DeviceIOS
	case strings.Contains(ua, "android"):
		return model.DeviceAndroid
	}
	return model.DeviceOther
}
