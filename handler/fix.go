package handler

import (
	"context"
	"errors"
	"net/http"

	"palace-guide/gps"
	"palace-guide/metrics"
	"palace-guide/model"
	"palace-guide/publish"

	"github.com/gin-gonic/gin"
)

// MaxFixReadings 单次请求最多上报的读数
const MaxFixReadings = 50

// FixRequest 客户端上报的一批原始读数 (按采集顺序), 最多 MaxFixReadings 条
type FixRequest struct {
	Readings    []model.RawReading    `json:"readings" binding:"required,min=1,max=50"`
	Orientation *gps.OrientationEvent `json:"orientation"`
	// Orientations 采样期间录制的方向事件 (按时间顺序), 取最后一个有效方位
	Orientations []gps.OrientationEvent `json:"orientations" binding:"max=200"`
	DeviceType   string                 `json:"deviceType"`
}

// FixResponse 融合定位 + 最近建筑
type FixResponse struct {
	Fix               *model.FusedFix         `json:"fix"`
	Building          *model.ResolvedBuilding `json:"building"`
	InsideManagedArea bool                    `json:"insideManagedArea"`
}

// GPSFix 把上报的读数按顺序回放给采样控制器, 得到融合定位后解析最近建筑
func (h *Handler) GPSFix(c *gin.Context) {
	var req FixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.LocateRequestsTotal.WithLabelValues("fix", "bad_request").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	deviceType := req.DeviceType
	if deviceType == "" {
		deviceType = gps.DetectDeviceType(c.GetHeader("User-Agent"))
	}
	compass := gps.NewCompass(deviceType)
	if len(req.Orientations) > 0 {
		events := make(chan gps.OrientationEvent, len(req.Orientations))
		for _, ev := range req.Orientations {
			events <- ev
		}
		close(events)
		compass.Run(c.Request.Context(), events)
	}
	if req.Orientation != nil {
		compass.Observe(*req.Orientation)
	}

	// 读数已经采集完, 不需要等待和重试
	cfg := h.sampling
	cfg.DeviceType = deviceType
	cfg.SampleDelay = 0
	cfg.MaxRetries = 0
	sampler := gps.NewSampler(gps.ReadingsProvider(req.Readings), compass, cfg)

	fix, err := sampler.AcquireFusedFix(c.Request.Context(), len(req.Readings), 0)
	if err != nil {
		var acqErr *gps.AcquisitionError
		switch {
		case errors.As(err, &acqErr):
			metrics.LocateRequestsTotal.WithLabelValues("fix", "acquisition_failed").Inc()
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":     "有效读数不足",
				"reason":    acqErr.Reason,
				"succeeded": acqErr.Succeeded,
				"required":  acqErr.Required,
			})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			metrics.LocateRequestsTotal.WithLabelValues("fix", "canceled").Inc()
			c.JSON(http.StatusRequestTimeout, gin.H{"error": "请求已取消"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	res, err := h.resolver.Locate(fix.Latitude, fix.Longitude)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	metrics.LocateRequestsTotal.WithLabelValues("fix", "ok").Inc()

	ev := publish.LocateEvent{
		Source:            "fix",
		SessionID:         fix.SessionID,
		Latitude:          fix.Latitude,
		Longitude:         fix.Longitude,
		Accuracy:          fix.Accuracy,
		InsideManagedArea: res.InsideManagedArea,
		Timestamp:         fix.Timestamp,
	}
	if res.Building != nil {
		ev.BuildingID = res.Building.ID
		ev.DistanceMeters = res.Building.DistanceMeters
	}
	h.publish(ev)

	c.JSON(http.StatusOK, FixResponse{
		Fix:               fix,
		Building:          res.Building,
		InsideManagedArea: res.InsideManagedArea,
	})
}
