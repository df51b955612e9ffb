package utils

import (
	"fmt"
	"math"
	"palace-guide/model"
)

// EarthRadius 地球平均半径 (米), 全项目统一使用这一个常量
const EarthRadius = 6371e3

// FixedDecimals 融合坐标保留的小数位数
const FixedDecimals = 7

// InvalidCoordinateError 坐标非数值或超出 [-90,90]/[-180,180]
type InvalidCoordinateError struct {
	Lat    float64
	Lng    float64
	Reason string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid coordinate (%v, %v): %s", e.Lat, e.Lng, e.Reason)
}

// ValidateCoordinate 校验经纬度, 避免 NaN 结果静默传播
func ValidateCoordinate(lat, lng float64) error {
	switch {
	case math.IsNaN(lat) || math.IsNaN(lng):
		return &InvalidCoordinateError{Lat: lat, Lng: lng, Reason: "not a number"}
	case math.IsInf(lat, 0) || math.IsInf(lng, 0):
		return &InvalidCoordinateError{Lat: lat, Lng: lng, Reason: "infinite"}
	case lat < -90 || lat > 90:
		return &InvalidCoordinateError{Lat: lat, Lng: lng, Reason: "latitude out of range"}
	case lng < -180 || lng > 180:
		return &InvalidCoordinateError{Lat: lat, Lng: lng, Reason: "longitude out of range"}
	}
	return nil
}

// DegreesToRadians 角度转弧度
func DegreesToRadians(d float64) float64 {
	return d * math.Pi / 180.0
}

// HaversineDistance Haversine 公式 (直接计算两点间球面距离)
// 不做参数校验, 调用方需保证坐标合法
func HaversineDistance(p1, p2 model.Point) float64 {
	lat1 := DegreesToRadians(p1.Lat)
	lat2 := DegreesToRadians(p2.Lat)
	dLat := DegreesToRadians(p2.Lat - p1.Lat)
	dLng := DegreesToRadians(p2.Lng - p1.Lng)

	// a = sin²(Δlat/2) + cos(lat1) * cos(lat2) * sin²(Δlng/2)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	// c = 2 * atan2(√a, √(1-a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// DistanceMeters 两点间的大圆距离 (米)
// 对称: DistanceMeters(A,B) == DistanceMeters(B,A); 相同坐标返回 0
func DistanceMeters(lat1, lng1, lat2, lng2 float64) (float64, error) {
	if err := ValidateCoordinate(lat1, lng1); err != nil {
		return 0, err
	}
	if err := ValidateCoordinate(lat2, lng2); err != nil {
		return 0, err
	}
	return HaversineDistance(model.Point{Lat: lat1, Lng: lng1}, model.Point{Lat: lat2, Lng: lng2}), nil
}

// 八个罗盘方位, 从正北顺时针
var compassOctants = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// DirectionUnknown 无方位数据时的返回值
const DirectionUnknown = "unknown"

// CompassDirection 方位角转罗盘方向: round(heading/45) mod 8
func CompassDirection(heading *float64) string {
	if heading == nil || math.IsNaN(*heading) || math.IsInf(*heading, 0) {
		return DirectionUnknown
	}
	idx := int(math.Round(NormalizeHeading(*heading)/45)) % 8
	return compassOctants[idx]
}

// NormalizeHeading 把任意角度归一化到 [0, 360)
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}

// RoundTo 按十进制位数四舍五入
func RoundTo(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(v*p) / p
}
