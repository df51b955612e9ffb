package algo

import (
	"palace-guide/utils"

	"github.com/paulmach/orb"
)

// ManagedArea 固定的矩形管理区域 (例如景福宫), 区域内才开放现场功能
type ManagedArea struct {
	North float64 `json:"north" yaml:"north"`
	South float64 `json:"south" yaml:"south"`
	East  float64 `json:"east" yaml:"east"`
	West  float64 `json:"west" yaml:"west"`
}

// Gyeongbokgung 景福宫的大致边界
var Gyeongbokgung = ManagedArea{
	North: 37.5820,
	South: 37.5760,
	East:  126.9790,
	West:  126.9750,
}

// Bound 转成 orb.Bound (orb 的点是 [lng, lat])
func (a ManagedArea) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{a.West, a.South},
		Max: orb.Point{a.East, a.North},
	}
}

// Contains 包含边界; 非法坐标一律视为不在区域内
func (a ManagedArea) Contains(lat, lng float64) bool {
	if utils.ValidateCoordinate(lat, lng) != nil {
		return false
	}
	return a.Bound().Contains(orb.Point{lng, lat})
}

// Center 区域中心点
func (a ManagedArea) Center() orb.Point {
	return a.Bound().Center()
}
