package model

// Point 代表一个经纬度点 (WGS84)
type Point struct {
	Lat float64 `json:"lat"` // 纬度
	Lng float64 `json:"lng"` // 经度
}
