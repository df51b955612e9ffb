package model

import "time"

// 设备类型标签
const (
	DeviceIOS     = "iOS"
	DeviceAndroid = "Android"
	DeviceOther   = "Other"
)

// RawReading 设备定位接口返回的一次原始读数
type RawReading struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"` // 1-sigma 半径 (米), 不为负, 信号差时可能 >1000
}

// FusedFix 多次采样融合后的最终定位结果, 生成后不可修改
type FusedFix struct {
	SessionID        string    `json:"sessionId"`
	Latitude         float64   `json:"latitude"`  // 保留 7 位小数
	Longitude        float64   `json:"longitude"` // 保留 7 位小数
	Accuracy         float64   `json:"accuracy"`  // 各次滤波结果精度的平均值
	Heading          *float64  `json:"heading"`   // 罗盘方位角, 无传感器时为 null
	Direction        string    `json:"direction"`
	Timestamp        int64     `json:"timestamp"` // 毫秒时间戳
	CaptureTime      time.Time `json:"captureTime"`
	DeviceType       string    `json:"deviceType"`
	MeasurementCount int       `json:"measurementCount"`
}
