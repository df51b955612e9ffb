package algo

import (
	"math"
	"strings"

	"palace-guide/logger"
	"palace-guide/model"
	"palace-guide/utils"
)

// Resolver 根据坐标找到最近的建筑
// 建筑目录只读, 可在多个请求间无锁共享
type Resolver struct {
	buildings []model.Building
	index     map[string]int
	area      ManagedArea
}

// NewResolver 用一份建筑目录和管理区域创建解析器 (目录会被复制)
func NewResolver(buildings []model.Building, area ManagedArea) *Resolver {
	r := &Resolver{
		buildings: append([]model.Building(nil), buildings...),
		index:     make(map[string]int, len(buildings)),
		area:      area,
	}
	for i, b := range r.buildings {
		r.index[b.ID] = i
	}
	return r
}

// Buildings 按目录顺序返回所有建筑 (副本)
func (r *Resolver) Buildings() []model.Building {
	return append([]model.Building(nil), r.buildings...)
}

// Area 管理区域
func (r *Resolver) Area() ManagedArea {
	return r.area
}

// ResolveNearest 遍历整个目录, 返回距离最近的建筑
// 目录为空时返回 nil, nil; 距离相同时先出现的建筑胜出
func (r *Resolver) ResolveNearest(lat, lng float64) (*model.ResolvedBuilding, error) {
	if err := utils.ValidateCoordinate(lat, lng); err != nil {
		return nil, err
	}

	nearest := -1
	minDist := math.Inf(1)
	target := model.Point{Lat: lat, Lng: lng}
	for i, b := range r.buildings {
		dist := utils.HaversineDistance(target, b.Center())
		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}

	if nearest < 0 {
		logger.L().Debug("resolve_empty_catalog", "lat", lat, "lng", lng)
		return nil, nil
	}

	res := &model.ResolvedBuilding{
		Building:          r.buildings[nearest],
		DistanceMeters:    int(math.Round(minDist)),
		InsideManagedArea: r.area.Contains(lat, lng),
	}
	logger.L().Debug("resolve_nearest",
		"lat", lat,
		"lng", lng,
		"building", res.ID,
		"distance_m", res.DistanceMeters,
		"inside", res.InsideManagedArea,
	)
	return res, nil
}

// IsInsideManagedArea 矩形边界判断, 与 ResolveNearest 相互独立
func (r *Resolver) IsInsideManagedArea(lat, lng float64) bool {
	return r.area.Contains(lat, lng)
}

// LocateResult 一次定位的完整结果: 最近建筑 (可能为空) + 是否在管理区域内
type LocateResult struct {
	Building          *model.ResolvedBuilding
	InsideManagedArea bool
}

// Locate 同时给出最近建筑与区域判断
func (r *Resolver) Locate(lat, lng float64) (LocateResult, error) {
	b, err := r.ResolveNearest(lat, lng)
	if err != nil {
		return LocateResult{}, err
	}
	return LocateResult{Building: b, InsideManagedArea: r.area.Contains(lat, lng)}, nil
}

// FindByID 按 ID 查找建筑
func (r *Resolver) FindByID(id string) (*model.Building, bool) {
	i, ok := r.index[id]
	if !ok {
		return nil, false
	}
	b := r.buildings[i]
	return &b, true
}

// FindByName 在地点名称中查找目录里的建筑名
// 多个建筑名都出现时取最长的 (如 "내소주방" 优先于 "소주방")
func (r *Resolver) FindByName(placeName string) (*model.Building, bool) {
	best := -1
	for i, b := range r.buildings {
		if b.Name == "" || !strings.Contains(placeName, b.Name) {
			continue
		}
		if best < 0 || len(b.Name) > len(r.buildings[best].Name) {
			best = i
		}
	}
	if best < 0 {
		return nil, false
	}
	b := r.buildings[best]
	return &b, true
}
