package places

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"palace-guide/algo"
	"palace-guide/logger"
	"palace-guide/metrics"
	"palace-guide/model"
	"palace-guide/utils"
)

// 识别来源
const (
	SourceMap      = "map"
	SourceDistance = "distance"
)

const (
	// PalaceName 地点名称中必须包含的关键字
	PalaceName = "경복궁"
	// IdentifyRadius 关键字搜索半径 (米)
	IdentifyRadius = 100
	// MaxPlaceDistance 地点与用户的最大距离 (米)
	MaxPlaceDistance = 200.0
	// PalaceAddress 管理区域内使用的地址
	PalaceAddress = "서울특별시 종로구 사직로 161 (경복궁)"
)

// DefaultKeywords 识别时依次搜索的关键字
var DefaultKeywords = []string{"경복궁", "근정전", "경회루", "사정전", "강녕전", "교태전", "자경전"}

// GeneralBuilding 地点只匹配到 "경복궁" 时使用的通用条目 (不在建筑目录中)
var GeneralBuilding = model.Building{
	ID:          "gyeongbokgung_general",
	Name:        "경복궁",
	NameEn:      "Gyeongbokgung Palace",
	Description: "조선 왕조의 정궁으로, 1395년 태조 이성계가 창건했습니다.",
	Lat:         37.5796,
	Lng:         126.9770,
	Radius:      200,
}

// Identification 识别结果
type Identification struct {
	Building *model.ResolvedBuilding `json:"building"`
	Source   string                  `json:"source"`
	Place    *Place                  `json:"place,omitempty"`
	Address  string                  `json:"address"`
}

// Identifier 先用地点搜索识别建筑, 失败或无匹配时退回纯距离解析
type Identifier struct {
	searcher Searcher
	geocoder Geocoder
	resolver *algo.Resolver
	keywords []string
}

// NewIdentifier searcher/geocoder 可以为空
func NewIdentifier(searcher Searcher, geocoder Geocoder, resolver *algo.Resolver) *Identifier {
	return &Identifier{
		searcher: searcher,
		geocoder: geocoder,
		resolver: resolver,
		keywords: DefaultKeywords,
	}
}

type candidate struct {
	place    Place
	building model.Building
	distance float64
}

// Identify 识别坐标所在的建筑
func (id *Identifier) Identify(ctx context.Context, lat, lng float64) (*Identification, error) {
	if err := utils.ValidateCoordinate(lat, lng); err != nil {
		return nil, err
	}
	inside := id.resolver.IsInsideManagedArea(lat, lng)

	if id.searcher != nil {
		if best, ok := id.searchNearby(ctx, lat, lng); ok {
			b := best.building
			return &Identification{
				Building: &model.ResolvedBuilding{
					Building:          b,
					DistanceMeters:    int(math.Round(best.distance)),
					InsideManagedArea: inside,
				},
				Source:  SourceMap,
				Place:   &best.place,
				Address: id.AddressHint(ctx, lat, lng, &b),
			}, nil
		}
	}

	metrics.IdentifyFallbackTotal.Inc()
	res, err := id.resolver.ResolveNearest(lat, lng)
	if err != nil {
		return nil, err
	}
	var near *model.Building
	if res != nil {
		near = &res.Building
	}
	return &Identification{
		Building: res,
		Source:   SourceDistance,
		Address:  id.AddressHint(ctx, lat, lng, near),
	}, nil
}

// searchNearby 并发搜索所有关键字, 返回距离最近的匹配地点
// 所有搜索都失败或没有匹配时返回 false
func (id *Identifier) searchNearby(ctx context.Context, lat, lng float64) (candidate, bool) {
	results := make([][]Place, len(id.keywords))
	errs := make([]error, len(id.keywords))

	var wg sync.WaitGroup
	for i, kw := range id.keywords {
		wg.Add(1)
		go func(i int, kw string) {
			defer wg.Done()
			results[i], errs[i] = id.searcher.KeywordSearch(ctx, SearchRequest{
				Query:  kw,
				Lat:    lat,
				Lng:    lng,
				Radius: IdentifyRadius,
			})
		}(i, kw)
	}
	wg.Wait()

	var cands []candidate
	for i, places := range results {
		if errs[i] != nil {
			logger.L().Warn("identify_search_failed", "keyword", id.keywords[i], "err", errs[i])
			continue
		}
		for _, p := range places {
			if !strings.Contains(p.Name, PalaceName) {
				continue
			}
			dist, err := utils.DistanceMeters(lat, lng, p.Lat, p.Lng)
			if err != nil || dist > MaxPlaceDistance {
				continue
			}
			cands = append(cands, candidate{
				place:    p,
				building: id.match(p.Name),
				distance: dist,
			})
		}
	}
	if len(cands) == 0 {
		return candidate{}, false
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].distance < cands[j].distance
	})
	logger.L().Debug("identify_map_match",
		"place", cands[0].place.Name,
		"building", cands[0].building.ID,
		"distance_m", cands[0].distance,
		"candidates", len(cands),
	)
	return cands[0], true
}

// match 地点名称 -> 目录建筑; 只包含 "경복궁" 时返回通用条目
func (id *Identifier) match(placeName string) model.Building {
	if b, ok := id.resolver.FindByName(placeName); ok {
		return *b
	}
	return GeneralBuilding
}

// AddressHint 管理区域内返回宫殿地址; 否则尝试逆地理编码, 最后退回 "현재 위치 (X 인근)"
func (id *Identifier) AddressHint(ctx context.Context, lat, lng float64, near *model.Building) string {
	if id.resolver.IsInsideManagedArea(lat, lng) {
		return PalaceAddress
	}
	if id.geocoder != nil {
		addr, err := id.geocoder.Coord2Address(ctx, lat, lng)
		if err == nil && addr != "" {
			return addr
		}
		if err != nil {
			logger.L().Debug("identify_geocode_failed", "err", err)
		}
	}
	name := PalaceName
	if near != nil && near.Name != "" {
		name = near.Name
	}
	return "현재 위치 (" + name + " 인근)"
}
