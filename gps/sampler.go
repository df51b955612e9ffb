package gps

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"palace-guide/algo"
	"palace-guide/logger"
	"palace-guide/metrics"
	"palace-guide/model"
	"palace-guide/utils"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// Config 采集会话参数
type Config struct {
	SampleCount    int           `yaml:"sample_count"`    // 每次会话请求的读数次数
	SampleDelay    time.Duration `yaml:"sample_delay"`    // 两次请求之间的等待
	RequestTimeout time.Duration `yaml:"request_timeout"` // 单次请求超时
	MinSamples     int           `yaml:"min_samples"`     // 至少成功的读数次数
	MaxRetries     int           `yaml:"max_retries"`     // 读数不足时整体重试次数
	RetryBackoff   time.Duration `yaml:"retry_backoff"`   // 重试前等待
	MaxHeadingAge  time.Duration `yaml:"max_heading_age"` // 罗盘方位超过该时长视为过期, 0 表示不检查
	DeviceType     string        `yaml:"device_type"`
}

// DefaultConfig 默认参数: 3 次采样, 间隔 0.5s, 单次超时 8s, 读数不足时 3s 后重试, 最多 2 次; 方位 5s 内有效
func DefaultConfig() Config {
	return Config{
		SampleCount:    3,
		SampleDelay:    500 * time.Millisecond,
		RequestTimeout: 8 * time.Second,
		MinSamples:     3,
		MaxRetries:     2,
		RetryBackoff:   3 * time.Second,
		MaxHeadingAge:  5 * time.Second,
		DeviceType:     model.DeviceOther,
	}
}

// AcquisitionError 采集失败: 设备不支持定位, 或重试用尽后成功读数仍不足
type AcquisitionError struct {
	Reason    string
	Attempts  int
	Succeeded int
	Required  int
	Err       error
}

func (e *AcquisitionError) Error() string {
	msg := fmt.Sprintf("gps acquisition failed: %s (attempts=%d, succeeded=%d, required=%d)",
		e.Reason, e.Attempts, e.Succeeded, e.Required)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// SampleTimeoutError 单次读数超时; 只在会话内部处理, 跳过该样本
type SampleTimeoutError struct {
	Index   int
	Timeout time.Duration
}

func (e *SampleTimeoutError) Error() string {
	return fmt.Sprintf("gps sample %d timed out after %s", e.Index, e.Timeout)
}

// Sampler 采样控制器
// 每次 AcquireFusedFix 使用独立的滤波器实例, 读数严格按顺序请求
type Sampler struct {
	provider LocationProvider
	heading  HeadingSource
	cfg      Config
	now      func() time.Time
	// 平台读数槽位: 超时返回后, 迟到的读数仍占用槽位直到 provider 返回
	slot chan struct{}
}

// NewSampler 创建采样控制器; heading 可为 nil
func NewSampler(provider LocationProvider, heading HeadingSource, cfg Config) *Sampler {
	if cfg.DeviceType == "" {
		cfg.DeviceType = model.DeviceOther
	}
	return &Sampler{
		provider: provider,
		heading:  heading,
		cfg:      cfg,
		now:      time.Now,
		slot:     make(chan struct{}, 1),
	}
}

// AcquireFusedFix 执行一次有界的采集会话, 输出一个融合定位
// sampleCount <= 0 或 delay < 0 时使用配置中的值
// ctx 取消后不再发起新的请求, 已在途请求的结果被丢弃
func (s *Sampler) AcquireFusedFix(ctx context.Context, sampleCount int, delay time.Duration) (*model.FusedFix, error) {
	if sampleCount <= 0 {
		sampleCount = s.cfg.SampleCount
	}
	if delay < 0 {
		delay = s.cfg.SampleDelay
	}
	required := s.cfg.MinSamples
	if required <= 0 {
		required = 1
	}

	if s.provider == nil {
		metrics.AcquisitionsTotal.WithLabelValues("unavailable").Inc()
		return nil, &AcquisitionError{Reason: "no location capability", Required: required, Err: ErrNoLocationCapability}
	}
	if sampleCount < required {
		metrics.AcquisitionsTotal.WithLabelValues("failed").Inc()
		return nil, &AcquisitionError{
			Reason:   fmt.Sprintf("sample count %d below minimum", sampleCount),
			Required: required,
		}
	}

	sessionID := uuid.NewString()
	l := logger.L().With("session", sessionID)
	filter := algo.NewPositionFilter()

	succeeded := 0
	attempts := 0
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			metrics.AcquisitionRetriesTotal.Inc()
			l.Warn("gps_retry", "attempt", attempt+1, "backoff", s.cfg.RetryBackoff)
			if err := sleepContext(ctx, s.cfg.RetryBackoff); err != nil {
				return nil, s.canceled(err)
			}
		}
		attempts++

		readings, err := s.collect(ctx, l, filter, sampleCount, delay)
		if err != nil {
			var acqErr *AcquisitionError
			if errors.As(err, &acqErr) {
				acqErr.Attempts = attempts
				acqErr.Required = required
				metrics.AcquisitionsTotal.WithLabelValues("unavailable").Inc()
				return nil, acqErr
			}
			return nil, s.canceled(err)
		}

		succeeded = len(readings)
		l.Info("gps_session_collected", "attempt", attempts, "succeeded", succeeded, "required", required)
		if succeeded >= required {
			fix := s.fuse(sessionID, readings)
			metrics.AcquisitionsTotal.WithLabelValues("ok").Inc()
			l.Info("gps_fix",
				"lat", fix.Latitude,
				"lng", fix.Longitude,
				"accuracy", fix.Accuracy,
				"direction", fix.Direction,
				"count", fix.MeasurementCount,
			)
			return fix, nil
		}
	}

	metrics.AcquisitionsTotal.WithLabelValues("failed").Inc()
	return nil, &AcquisitionError{
		Reason:    "too few successful samples",
		Attempts:  attempts,
		Succeeded: succeeded,
		Required:  required,
	}
}

// collect 重置滤波器并顺序请求 n 次读数, 失败的样本记录后跳过
func (s *Sampler) collect(ctx context.Context, l *slog.Logger, filter *algo.PositionFilter, n int, delay time.Duration) ([]algo.FilteredReading, error) {
	filter.Reset()
	out := make([]algo.FilteredReading, 0, n)

	for i := 0; i < n; i++ {
		if i > 0 {
			if err := sleepContext(ctx, delay); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := s.readOnce(ctx, i)
		if ctxErr := ctx.Err(); ctxErr != nil {
			// 会话已取消: 在途结果直接丢弃, 不再更新滤波器
			metrics.SamplesTotal.WithLabelValues("discarded").Inc()
			return nil, ctxErr
		}
		if err != nil {
			if errors.Is(err, ErrNoLocationCapability) {
				return nil, &AcquisitionError{Reason: "no location capability", Err: err}
			}
			var timeout *SampleTimeoutError
			if errors.As(err, &timeout) {
				metrics.SamplesTotal.WithLabelValues("timeout").Inc()
			} else {
				metrics.SamplesTotal.WithLabelValues("error").Inc()
			}
			l.Warn("gps_sample_skipped", "index", i, "err", err)
			continue
		}
		if err := validateReading(raw); err != nil {
			metrics.SamplesTotal.WithLabelValues("invalid").Inc()
			l.Warn("gps_sample_invalid", "index", i, "err", err)
			continue
		}

		metrics.SamplesTotal.WithLabelValues("ok").Inc()
		filtered := filter.Update(raw)
		l.Debug("gps_sample",
			"index", i,
			"raw_lat", raw.Latitude,
			"raw_lng", raw.Longitude,
			"raw_accuracy", raw.Accuracy,
			"lat", filtered.Latitude,
			"lng", filtered.Longitude,
		)
		out = append(out, filtered)
	}
	return out, nil
}

type readResult struct {
	reading model.RawReading
	err     error
}

// readOnce 发起一次新的传感器读数 (不使用缓存), 带单次超时
// 上一次读数仍在途时先等待它结束, 等待时间计入本次超时
func (s *Sampler) readOnce(ctx context.Context, index int) (model.RawReading, error) {
	rctx := ctx
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}
	opts := PositionOptions{EnableHighAccuracy: true, Timeout: s.cfg.RequestTimeout, MaximumAge: 0}

	select {
	case s.slot <- struct{}{}:
	case <-rctx.Done():
		if err := ctx.Err(); err != nil {
			return model.RawReading{}, err
		}
		return model.RawReading{}, &SampleTimeoutError{Index: index, Timeout: s.cfg.RequestTimeout}
	}

	ch := make(chan readResult, 1)
	go func() {
		r, err := s.provider.CurrentPosition(rctx, opts)
		<-s.slot
		ch <- readResult{reading: r, err: err}
	}()

	select {
	case res := <-ch:
		if res.err != nil && errors.Is(res.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return model.RawReading{}, &SampleTimeoutError{Index: index, Timeout: s.cfg.RequestTimeout}
		}
		return res.reading, res.err
	case <-rctx.Done():
		if err := ctx.Err(); err != nil {
			return model.RawReading{}, err
		}
		return model.RawReading{}, &SampleTimeoutError{Index: index, Timeout: s.cfg.RequestTimeout}
	}
}

// fuse 取最后一次滤波结果的坐标, 精度取所有滤波结果的平均
func (s *Sampler) fuse(sessionID string, readings []algo.FilteredReading) *model.FusedFix {
	last := readings[len(readings)-1]
	accuracies := make([]float64, len(readings))
	for i, r := range readings {
		accuracies[i] = r.Accuracy
	}

	now := s.now()
	var heading *float64
	if s.heading != nil {
		if h, ok := s.heading.Heading(); ok && !s.headingStale(now) {
			heading = &h
		}
	}
	return &model.FusedFix{
		SessionID:        sessionID,
		Latitude:         utils.RoundTo(last.Latitude, utils.FixedDecimals),
		Longitude:        utils.RoundTo(last.Longitude, utils.FixedDecimals),
		Accuracy:         stat.Mean(accuracies, nil),
		Heading:          heading,
		Direction:        utils.CompassDirection(heading),
		Timestamp:        now.UnixMilli(),
		CaptureTime:      now.UTC(),
		DeviceType:       s.cfg.DeviceType,
		MeasurementCount: len(readings),
	}
}

// headingStale 方位源能报告更新时间时, 丢弃过期的方位
func (s *Sampler) headingStale(now time.Time) bool {
	if s.cfg.MaxHeadingAge <= 0 {
		return false
	}
	src, ok := s.heading.(interface{ UpdatedAt() time.Time })
	if !ok {
		return false
	}
	updated := src.UpdatedAt()
	return updated.IsZero() || now.Sub(updated) > s.cfg.MaxHeadingAge
}

func (s *Sampler) canceled(err error) error {
	metrics.AcquisitionsTotal.WithLabelValues("canceled").Inc()
	return fmt.Errorf("gps acquisition canceled: %w", err)
}

func validateReading(r model.RawReading) error {
	if err := utils.ValidateCoordinate(r.Latitude, r.Longitude); err != nil {
		return err
	}
	if r.Accuracy < 0 || math.IsNaN(r.Accuracy) || math.IsInf(r.Accuracy, 0) {
		return fmt.Errorf("invalid accuracy %v", r.Accuracy)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
