package handler

import (
	"net/http"

	"palace-guide/model"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// BuildingSummary 列表中的建筑摘要
type BuildingSummary struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	NameEn           string      `json:"nameEn"`
	Description      string      `json:"description"`
	Coordinates      model.Point `json:"coordinates"`
	CulturalProperty string      `json:"culturalProperty"`
}

// ListBuildings 按目录顺序返回所有建筑
func (h *Handler) ListBuildings(c *gin.Context) {
	buildings := h.resolver.Buildings()
	list := make([]BuildingSummary, 0, len(buildings))
	for _, b := range buildings {
		list = append(list, BuildingSummary{
			ID:               b.ID,
			Name:             b.Name,
			NameEn:           b.NameEn,
			Description:      b.Description,
			Coordinates:      b.Center(),
			CulturalProperty: b.CulturalProperty,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"buildings": list,
		"total":     len(list),
	})
}

// GetBuilding 根据 ID 获取建筑详情
func (h *Handler) GetBuilding(c *gin.Context) {
	b, ok := h.resolver.FindByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "建筑不存在"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"building": b,
	})
}

// BuildingsGeoJSON 建筑点位 + 管理区域多边形, 供地图直接加载
func (h *Handler) BuildingsGeoJSON(c *gin.Context) {
	fc := geojson.NewFeatureCollection()

	area := geojson.NewFeature(h.resolver.Area().Bound().ToPolygon())
	area.ID = "managed_area"
	area.Properties["kind"] = "managed_area"
	fc.Append(area)

	for _, b := range h.resolver.Buildings() {
		f := geojson.NewFeature(orb.Point{b.Lng, b.Lat})
		f.ID = b.ID
		f.Properties["kind"] = "building"
		f.Properties["name"] = b.Name
		f.Properties["nameEn"] = b.NameEn
		f.Properties["radius"] = b.Radius
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "生成 GeoJSON 失败"})
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}
