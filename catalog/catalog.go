// Package catalog 内置的景福宫建筑目录 (唯一权威数据源)
// 服务端解析器、HTTP 接口以及数据库初始导入都使用这一份数据
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"palace-guide/model"
)

//go:embed buildings.json
var defaultJSON []byte

// 缺省值: 目录中只写了坐标的建筑用这些值补全
const (
	DefaultDescription      = "경복궁의 대표적인 건물 중 하나입니다."
	DefaultBuildYear        = "미상"
	DefaultCulturalProperty = "문화재"
	DefaultFeature          = "경복궁 건물"
	DefaultRadius           = 30
)

// File 目录文件结构
type File struct {
	Meta      map[string]interface{} `json:"meta"`
	Buildings []model.Building       `json:"buildings"`
}

// Default 解析内置目录
func Default() ([]model.Building, error) {
	return Parse(defaultJSON)
}

// Parse 解析目录 JSON, 补全缺省字段并按出现顺序写入 SortOrder
func Parse(data []byte) ([]model.Building, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析建筑目录失败: %w", err)
	}

	seen := make(map[string]bool, len(f.Buildings))
	for i := range f.Buildings {
		b := &f.Buildings[i]
		if b.ID == "" {
			return nil, fmt.Errorf("building[%d].id is required", i)
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("duplicate building id: %s", b.ID)
		}
		seen[b.ID] = true
		applyDefaults(b)
		b.SortOrder = i
	}
	return f.Buildings, nil
}

func applyDefaults(b *model.Building) {
	if b.Description == "" {
		b.Description = DefaultDescription
	}
	if b.DetailedDescription == "" {
		b.DetailedDescription = b.Description
	}
	if b.BuildYear == "" {
		b.BuildYear = DefaultBuildYear
	}
	if b.CulturalProperty == "" {
		b.CulturalProperty = DefaultCulturalProperty
	}
	if len(b.Features) == 0 {
		b.Features = []string{DefaultFeature}
	}
	if b.Images == nil {
		b.Images = []string{}
	}
	if b.Radius == 0 {
		b.Radius = DefaultRadius
	}
}
