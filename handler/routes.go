package handler

import "github.com/gin-gonic/gin"

// Routes 注册 /api 路由组下的所有接口
func (h *Handler) Routes(api *gin.RouterGroup) {
	// 公开接口 (无需认证)
	api.POST("/login", h.Login)
	api.POST("/register", h.Register)

	// 定位与建筑
	api.POST("/locate", h.Locate)
	api.POST("/check-location", h.CheckLocation)
	api.POST("/gps/fix", h.GPSFix)
	api.POST("/identify", h.Identify)
	api.GET("/buildings", h.ListBuildings)
	api.GET("/buildings.geojson", h.BuildingsGeoJSON)
	api.GET("/buildings/:id", h.GetBuilding)
	api.GET("/building/:id", h.GetBuilding)
	api.GET("/toilets", h.Toilets)

	// 需要登录
	authorized := api.Group("/")
	authorized.Use(h.AuthMiddleware())
	{
		authorized.GET("/users", h.ListUsers)
	}
}
