package handler

import (
	"errors"
	"net/http"
	"strconv"

	"palace-guide/places"
	"palace-guide/publish"
	"palace-guide/utils"

	"github.com/gin-gonic/gin"
)

// Identify 地点搜索识别建筑, 搜索服务不可用时退回纯距离解析
func (h *Handler) Identify(c *gin.Context) {
	lat, lng, ok := bindCoordinates(c, "identify")
	if !ok {
		return
	}

	res, err := h.identifier.Identify(c.Request.Context(), lat, lng)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	if res.Building == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"message": "위치를 확인할 수 없습니다.",
			"source":  res.Source,
			"address": res.Address,
		})
		return
	}

	h.publish(publish.LocateEvent{
		Source:            "identify",
		Latitude:          lat,
		Longitude:         lng,
		BuildingID:        res.Building.ID,
		DistanceMeters:    res.Building.DistanceMeters,
		InsideManagedArea: res.Building.InsideManagedArea,
	})
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  res.Building.Name + "을(를) 식별했습니다!",
		"building": res.Building,
		"source":   res.Source,
		"place":    res.Place,
		"address":  res.Address,
	})
}

// Toilets 附近 1km 内的开放卫生间
func (h *Handler) Toilets(c *gin.Context) {
	if h.places == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "地点搜索服务未配置"})
		return
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少或无效的 lat/lng 参数"})
		return
	}

	toilets, err := places.FindToilets(c.Request.Context(), h.places, lat, lng)
	if err != nil {
		var coordErr *utils.InvalidCoordinateError
		if errors.As(err, &coordErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "地点搜索失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(toilets),
		"toilets": toilets,
	})
}
