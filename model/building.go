package model

import "github.com/lib/pq"

// Building 对应景福宫内的一座建筑 (殿阁、门、楼)
// 建筑目录在启动时加载一次, 运行期间只读
type Building struct {
	ID                  string         `json:"id" gorm:"primaryKey"`
	Name                string         `json:"name" gorm:"index"` // 韩文名称, 如 "근정전"
	NameEn              string         `json:"nameEn"`
	Description         string         `json:"description"`
	DetailedDescription string         `json:"detailedDescription"`
	Lat                 float64        `json:"lat"`
	Lng                 float64        `json:"lng"`
	Radius              float64        `json:"radius"` // 名义半径 (米), 仅用于展示, 不参与匹配
	BuildYear           string         `json:"buildYear"`
	CulturalProperty    string         `json:"culturalProperty"`
	Features            pq.StringArray `json:"features" gorm:"type:text[]"`
	Images              pq.StringArray `json:"images" gorm:"type:text[]"`
	SortOrder           int            `json:"-" gorm:"index"` // 目录顺序, 距离相同时先出现的建筑胜出
}

// Center 建筑中心点
func (b Building) Center() Point {
	return Point{Lat: b.Lat, Lng: b.Lng}
}

// ResolvedBuilding 一次定位解析的结果 (每次调用新建, 不入库)
type ResolvedBuilding struct {
	Building
	DistanceMeters    int  `json:"distanceMeters"`    // 四舍五入到整米
	InsideManagedArea bool `json:"insideManagedArea"` // 是否在景福宫管理范围内
}
