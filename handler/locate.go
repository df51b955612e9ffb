package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"palace-guide/metrics"
	"palace-guide/publish"
	"palace-guide/utils"

	"github.com/gin-gonic/gin"
)

// CoordinateRequest 定位请求; 字段用指针区分 "缺失" 和 0
type CoordinateRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// BuildingRef 建筑的最小引用
type BuildingRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LocateResponse 目录为空时 building 为 null, 不返回距离
type LocateResponse struct {
	Building          *BuildingRef `json:"building"`
	DistanceMeters    *int         `json:"distanceMeters,omitempty"`
	InsideManagedArea bool         `json:"insideManagedArea"`
}

var errMissingCoordinates = errors.New("latitude and longitude are required")

// bindCoordinates 解析并校验坐标, 失败时已写入 400 响应
func bindCoordinates(c *gin.Context, endpoint string) (float64, float64, bool) {
	var req CoordinateRequest
	err := c.ShouldBindJSON(&req)
	if err == nil && (req.Latitude == nil || req.Longitude == nil) {
		err = errMissingCoordinates
	}
	if err == nil {
		err = utils.ValidateCoordinate(*req.Latitude, *req.Longitude)
	}
	if err != nil {
		metrics.LocateRequestsTotal.WithLabelValues(endpoint, "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "坐标参数错误: " + err.Error()})
		return 0, 0, false
	}
	return *req.Latitude, *req.Longitude, true
}

// Locate 坐标 -> 最近建筑 + 是否在管理区域内
func (h *Handler) Locate(c *gin.Context) {
	t0 := time.Now()
	lat, lng, ok := bindCoordinates(c, "locate")
	if !ok {
		return
	}

	res, err := h.resolver.Locate(lat, lng)
	if err != nil {
		metrics.LocateRequestsTotal.WithLabelValues("locate", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metrics.LocateDurationMs.Observe(float64(time.Since(t0).Microseconds()) / 1000)

	if res.Building == nil {
		metrics.LocateRequestsTotal.WithLabelValues("locate", "empty").Inc()
		c.JSON(http.StatusOK, LocateResponse{InsideManagedArea: res.InsideManagedArea})
		return
	}

	metrics.LocateRequestsTotal.WithLabelValues("locate", "ok").Inc()
	h.publish(publish.LocateEvent{
		Source:            "locate",
		Latitude:          lat,
		Longitude:         lng,
		BuildingID:        res.Building.ID,
		DistanceMeters:    res.Building.DistanceMeters,
		InsideManagedArea: res.InsideManagedArea,
	})
	dist := res.Building.DistanceMeters
	c.JSON(http.StatusOK, LocateResponse{
		Building:          &BuildingRef{ID: res.Building.ID, Name: res.Building.Name},
		DistanceMeters:    &dist,
		InsideManagedArea: res.InsideManagedArea,
	})
}

// CheckLocation 拍照前的位置确认, 返回可直接展示的提示语
func (h *Handler) CheckLocation(c *gin.Context) {
	lat, lng, ok := bindCoordinates(c, "check")
	if !ok {
		return
	}

	res, err := h.resolver.Locate(lat, lng)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if res.Building == nil {
		metrics.LocateRequestsTotal.WithLabelValues("check", "empty").Inc()
		c.JSON(http.StatusOK, gin.H{
			"success":         true,
			"message":         "위치를 확인할 수 없습니다.",
			"inGyeongbokgung": res.InsideManagedArea,
			"nearBuilding":    false,
		})
		return
	}

	b := res.Building
	suffix := "경복궁 밖에서 촬영"
	if res.InsideManagedArea {
		suffix = "촬영 가능"
	}
	metrics.LocateRequestsTotal.WithLabelValues("check", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         fmt.Sprintf("📍 %s (%dm) - %s", b.Name, b.DistanceMeters, suffix),
		"inGyeongbokgung": res.InsideManagedArea,
		"nearBuilding":    true,
		"building": gin.H{
			"id":       b.ID,
			"name":     b.Name,
			"nameEn":   b.NameEn,
			"distance": b.DistanceMeters,
		},
	})
}
