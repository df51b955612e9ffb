package algo

import (
	"fmt"
	"os"
	"palace-guide/catalog"
	"palace-guide/model"

	"gorm.io/gorm"
)

// LoadCatalogFromJSON 从 JSON 文件加载建筑目录 (格式同内置 buildings.json)
func LoadCatalogFromJSON(filepath string) ([]model.Building, error) {
	file, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return catalog.Parse(file)
}

// LoadCatalogFromDB 从数据库加载建筑目录, 按目录顺序排列
func LoadCatalogFromDB(db *gorm.DB) ([]model.Building, error) {
	var buildings []model.Building
	if err := db.Order("sort_order ASC").Find(&buildings).Error; err != nil {
		return nil, fmt.Errorf("查询建筑失败: %w", err)
	}
	return buildings, nil
}
