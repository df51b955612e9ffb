// Package places 第三方地点搜索 (Kakao Local REST API) 及其降级处理
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"palace-guide/logger"
	"palace-guide/metrics"

	"github.com/redis/go-redis/v9"
)

// DefaultBaseURL Kakao Local API 地址
const DefaultBaseURL = "https://dapi.kakao.com"

// ErrMissingKey 未配置 REST API 密钥
var ErrMissingKey = errors.New("missing kakao rest api key")

// Place 搜索返回的地点
type Place struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Address     string  `json:"address,omitempty"`
	RoadAddress string  `json:"roadAddress,omitempty"`
	URL         string  `json:"url,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
}

// DisplayAddress 优先使用道路名地址
func (p Place) DisplayAddress() string {
	if p.RoadAddress != "" {
		return p.RoadAddress
	}
	return p.Address
}

// SearchRequest 关键字搜索参数
type SearchRequest struct {
	Query  string
	Lat    float64
	Lng    float64
	Radius int // 米, Kakao 允许 0~20000
}

// Searcher 地点搜索服务 (外部协作方, 视为黑盒)
type Searcher interface {
	KeywordSearch(ctx context.Context, req SearchRequest) ([]Place, error)
}

// Geocoder 坐标转地址
type Geocoder interface {
	Coord2Address(ctx context.Context, lat, lng float64) (string, error)
}

// Client Kakao Local REST 客户端; cache 为空时不使用缓存
type Client struct {
	key      string
	baseURL  string
	http     *http.Client
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewClient 创建客户端; httpClient 为空时使用 5s 超时的默认客户端
func NewClient(key string, httpClient *http.Client, cache *redis.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		key:      key,
		baseURL:  DefaultBaseURL,
		http:     httpClient,
		cache:    cache,
		cacheTTL: 10 * time.Minute,
	}
}

// WithBaseURL 替换 API 地址
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// WithCacheTTL 设置缓存有效期
func (c *Client) WithCacheTTL(ttl time.Duration) *Client {
	c.cacheTTL = ttl
	return c
}

type keywordResponse struct {
	Documents []struct {
		ID              string `json:"id"`
		PlaceName       string `json:"place_name"`
		CategoryName    string `json:"category_name"`
		Phone           string `json:"phone"`
		AddressName     string `json:"address_name"`
		RoadAddressName string `json:"road_address_name"`
		PlaceURL        string `json:"place_url"`
		X               string `json:"x"`
		Y               string `json:"y"`
	} `json:"documents"`
}

type coord2AddressResponse struct {
	Documents []struct {
		Address *struct {
			AddressName string `json:"address_name"`
		} `json:"address"`
		RoadAddress *struct {
			AddressName string `json:"address_name"`
		} `json:"road_address"`
	} `json:"documents"`
}

// KeywordSearch 以坐标为中心按关键字搜索, 结果按距离排序
func (c *Client) KeywordSearch(ctx context.Context, req SearchRequest) ([]Place, error) {
	if c.key == "" {
		return nil, ErrMissingKey
	}

	key := cacheKey(req)
	if places, ok := c.cacheGet(ctx, key); ok {
		return places, nil
	}

	q := url.Values{}
	q.Set("query", req.Query)
	q.Set("x", strconv.FormatFloat(req.Lng, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(req.Lat, 'f', -1, 64))
	if req.Radius > 0 {
		q.Set("radius", strconv.Itoa(req.Radius))
	}
	q.Set("sort", "distance")

	var body keywordResponse
	if err := c.get(ctx, "/v2/local/search/keyword.json", q, &body); err != nil {
		return nil, err
	}

	places := make([]Place, 0, len(body.Documents))
	for _, d := range body.Documents {
		lat, errLat := strconv.ParseFloat(d.Y, 64)
		lng, errLng := strconv.ParseFloat(d.X, 64)
		if errLat != nil || errLng != nil {
			logger.L().Debug("kakao_bad_coord", "id", d.ID, "x", d.X, "y", d.Y)
			continue
		}
		places = append(places, Place{
			ID:          d.ID,
			Name:        d.PlaceName,
			Category:    d.CategoryName,
			Phone:       d.Phone,
			Address:     d.AddressName,
			RoadAddress: d.RoadAddressName,
			URL:         d.PlaceURL,
			Lat:         lat,
			Lng:         lng,
		})
	}
	c.cacheSet(ctx, key, places)
	return places, nil
}

// Coord2Address 坐标转地址, 优先返回道路名地址
func (c *Client) Coord2Address(ctx context.Context, lat, lng float64) (string, error) {
	if c.key == "" {
		return "", ErrMissingKey
	}
	q := url.Values{}
	q.Set("x", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("y", strconv.FormatFloat(lat, 'f', -1, 64))

	var body coord2AddressResponse
	if err := c.get(ctx, "/v2/local/geo/coord2address.json", q, &body); err != nil {
		return "", err
	}
	for _, d := range body.Documents {
		if d.RoadAddress != nil && d.RoadAddress.AddressName != "" {
			return d.RoadAddress.AddressName, nil
		}
		if d.Address != nil && d.Address.AddressName != "" {
			return d.Address.AddressName, nil
		}
	}
	return "", fmt.Errorf("no address for (%v, %v)", lat, lng)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "KakaoAK "+c.key)

	t0 := time.Now()
	metrics.PlaceRequestsTotal.Inc()
	logger.L().Debug("kakao_req", "path", path, "query", q.Get("query"))
	resp, err := c.http.Do(req)
	if err != nil {
		logger.L().Error("kakao_http_error", "path", path, "err", err)
		metrics.PlaceFailTotal.Inc()
		return err
	}
	defer resp.Body.Close()

	dur := time.Since(t0).Milliseconds()
	metrics.PlaceDurationMs.Observe(float64(dur))
	if resp.StatusCode != http.StatusOK {
		metrics.PlaceFailTotal.Inc()
		logger.L().Error("kakao_status_error", "path", path, "status", resp.StatusCode)
		return fmt.Errorf("kakao %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.PlaceFailTotal.Inc()
		logger.L().Error("kakao_decode_error", "path", path, "err", err)
		return err
	}
	logger.L().Debug("kakao_resp", "path", path, "duration_ms", dur)
	return nil
}

// cacheKey 坐标量化到 1e-4 度 (约 11m), 热点位置复用结果
func cacheKey(req SearchRequest) string {
	return fmt.Sprintf("places:kw:%s:%.4f:%.4f:%d", req.Query, req.Lat, req.Lng, req.Radius)
}

func (c *Client) cacheGet(ctx context.Context, key string) ([]Place, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warn("places_cache_get_error", "err", err)
		}
		metrics.PlaceCacheMissesTotal.Inc()
		return nil, false
	}
	var places []Place
	if err := json.Unmarshal(data, &places); err != nil {
		metrics.PlaceCacheMissesTotal.Inc()
		return nil, false
	}
	metrics.PlaceCacheHitsTotal.Inc()
	return places, true
}

func (c *Client) cacheSet(ctx context.Context, key string, places []Place) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(places)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		logger.L().Warn("places_cache_set_error", "err", err)
	}
}
