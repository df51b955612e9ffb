package algo

import (
	"math"
	"palace-guide/logger"
	"palace-guide/model"
)

// 滤波器参数
const (
	// InitialUncertainty 重置后每个轴的初始不确定度
	InitialUncertainty = 8000.0
	// ProcessNoise 每次更新不确定度的增长量; 取值偏大, 避免多次更新后估计值 "冻结"
	ProcessNoise = 50.0
	// MeasurementNoiseDivisor 测量噪声 R = accuracy / 2.5
	MeasurementNoiseDivisor = 2.5
	// MinMeasurementNoise R 的下限, 单次高精度读数不会把不确定度压到接近 0
	MinMeasurementNoise = 40.0
)

// Axes 纬度/经度两个轴上的一对标量
type Axes struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FilterState 滤波器内部状态快照
type FilterState struct {
	Estimate     Axes `json:"estimate"`
	Uncertainty  Axes `json:"uncertainty"`
	ProcessNoise Axes `json:"processNoise"`
	Initialized  bool `json:"initialized"`
	Count        int  `json:"count"`
}

// FilteredReading 单次更新后的估计结果
type FilteredReading struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// PositionFilter 二维递推 (卡尔曼式) 位置滤波器
// 状态: 未初始化 -> 跟踪中; Reset 回到未初始化
// 不支持并发调用, 一个实例只属于一次采集会话
type PositionFilter struct {
	state FilterState
}

// NewPositionFilter 创建一个已重置的滤波器
func NewPositionFilter() *PositionFilter {
	f := &PositionFilter{}
	f.Reset()
	return f
}

// Reset 清空估计值, 恢复初始不确定度与过程噪声
func (f *PositionFilter) Reset() {
	f.state = FilterState{
		Estimate:     Axes{},
		Uncertainty:  Axes{Lat: InitialUncertainty, Lng: InitialUncertainty},
		ProcessNoise: Axes{Lat: ProcessNoise, Lng: ProcessNoise},
	}
}

// State 返回当前状态的副本
func (f *PositionFilter) State() FilterState {
	return f.state
}

// Update 融合一次原始读数并返回新的估计
// 第一次调用直接采用读数; 之后按 预测 -> 增益 -> 校正 更新
func (f *PositionFilter) Update(r model.RawReading) FilteredReading {
	s := &f.state
	s.Count++

	if !s.Initialized {
		s.Estimate = Axes{Lat: r.Latitude, Lng: r.Longitude}
		s.Initialized = true
		logger.L().Debug("filter_init", "lat", r.Latitude, "lng", r.Longitude, "accuracy", r.Accuracy)
		return FilteredReading{Latitude: r.Latitude, Longitude: r.Longitude, Accuracy: r.Accuracy}
	}

	noise := math.Max(r.Accuracy/MeasurementNoiseDivisor, MinMeasurementNoise)

	// 预测
	predLat := s.Uncertainty.Lat + s.ProcessNoise.Lat
	predLng := s.Uncertainty.Lng + s.ProcessNoise.Lng

	// 增益 0 < K < 1
	kLat := predLat / (predLat + noise)
	kLng := predLng / (predLng + noise)

	// 校正
	s.Estimate.Lat += kLat * (r.Latitude - s.Estimate.Lat)
	s.Estimate.Lng += kLng * (r.Longitude - s.Estimate.Lng)
	s.Uncertainty.Lat = (1 - kLat) * predLat
	s.Uncertainty.Lng = (1 - kLng) * predLng

	out := FilteredReading{
		Latitude:  s.Estimate.Lat,
		Longitude: s.Estimate.Lng,
		Accuracy:  math.Sqrt(s.Uncertainty.Lat + s.Uncertainty.Lng),
	}
	logger.L().Debug("filter_update",
		"count", s.Count,
		"gain_lat", kLat,
		"gain_lng", kLng,
		"lat", out.Latitude,
		"lng", out.Longitude,
		"accuracy", out.Accuracy,
	)
	return out
}
