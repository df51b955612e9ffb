package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"palace-guide/algo"
	"palace-guide/config"
	"palace-guide/db"
	"palace-guide/handler"
	"palace-guide/logger"
	"palace-guide/metrics"
	"palace-guide/places"
	"palace-guide/publish"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	fmt.Println("=== 景福宫导览 - 建筑定位服务 ===")

	// 1. 加载 .env 和配置文件 (环境变量优先)
	_ = godotenv.Load()
	l := logger.Setup()
	cfg, err := config.Load(getEnvOrDefault("CONFIG_FILE", "config.yaml"))
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 2. 初始化数据库
	// 连接 PostgreSQL，自动迁移表结构
	// 如果是第一次运行，会自动导入示例用户和内置建筑目录
	conn, err := db.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 3. 从数据库加载建筑目录 (启动时加载一次, 之后只读)
	buildings, err := algo.LoadCatalogFromDB(conn)
	if err != nil {
		log.Fatalf("从数据库加载建筑目录失败: %v", err)
	}
	resolver := algo.NewResolver(buildings, cfg.Area)
	l.Info("catalog_loaded", "buildings", len(buildings))

	// 4. 地点搜索 (可选 redis 缓存) 与事件发布
	var searcher places.Searcher
	var geocoder places.Geocoder
	if cfg.Kakao.RestKey != "" {
		client := places.NewClient(cfg.Kakao.RestKey, nil, openRedis(cfg.Redis)).
			WithBaseURL(cfg.Kakao.BaseURL).
			WithCacheTTL(cfg.Redis.TTL)
		searcher, geocoder = client, client
	} else {
		l.Warn("kakao_disabled", "reason", "KAKAO_REST_KEY not set, identify falls back to distance")
	}

	var events publish.EventPublisher = publish.Nop{}
	if cfg.MQTT.Broker != "" {
		pub, err := publish.Connect(cfg.MQTT)
		if err != nil {
			l.Warn("mqtt_disabled", "err", err)
		} else {
			defer pub.Close()
			events = pub
		}
	}

	h := handler.New(handler.Deps{
		Resolver:   resolver,
		Users:      db.NewUserStore(conn),
		Identifier: places.NewIdentifier(searcher, geocoder, resolver),
		Places:     searcher,
		Events:     events,
		Sampling:   cfg.Sampling,
		JWTSecret:  []byte(cfg.JWT.Secret),
		TokenTTL:   cfg.JWT.TTL,
	})

	// 5. 初始化 Gin 引擎并配置路由
	r := gin.New()
	r.Use(gin.Recovery(), logger.Access(l))
	setupRoutes(r, h)

	// 6. 启动服务器
	fmt.Println("\n服务器启动中...")
	fmt.Printf("访问地址: http://localhost:%s\n", cfg.Port)
	fmt.Println("API 文档:")
	fmt.Println("  - POST   /api/login              - 用户登录")
	fmt.Println("  - POST   /api/register           - 用户注册")
	fmt.Println("  - POST   /api/locate             - 坐标 -> 最近建筑")
	fmt.Println("  - POST   /api/check-location     - 拍照前位置确认")
	fmt.Println("  - POST   /api/gps/fix            - 多次采样融合定位")
	fmt.Println("  - POST   /api/identify           - 地点搜索识别建筑")
	fmt.Println("  - GET    /api/buildings          - 所有建筑")
	fmt.Println("  - GET    /api/buildings/:id      - 指定建筑")
	fmt.Println("  - GET    /api/building/:id       - 指定建筑 (兼容路径)")
	fmt.Println("  - GET    /api/buildings.geojson  - 建筑 GeoJSON")
	fmt.Println("  - GET    /api/toilets            - 附近开放卫生间")
	fmt.Println("  - GET    /metrics                - Prometheus 指标")
	fmt.Println("\n按 Ctrl+C 退出")

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("服务器启动失败: %v", err)
	}
}

// setupRoutes 配置路由
func setupRoutes(r *gin.Engine, h *handler.Handler) {
	// CORS 跨域中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "ok",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// 兼容不带 /api 前缀的定位接口
	r.POST("/locate", h.Locate)

	// API 路由组
	h.Routes(r.Group("/api"))
}

// openRedis 未配置或无法连接时返回 nil (不使用缓存)
func openRedis(cfg config.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.L().Warn("redis_unavailable", "addr", cfg.Addr, "err", err)
		_ = rdb.Close()
		return nil
	}
	logger.L().Info("redis_connected", "addr", cfg.Addr, "db", cfg.DB)
	return rdb
}

// getEnvOrDefault 获取环境变量，如果不存在则返回默认值
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
