package places

import (
	"context"
	"math"
	"sort"

	"palace-guide/utils"
)

const (
	// ToiletKeyword 开放卫生间搜索关键字
	ToiletKeyword = "개방화장실"
	// ToiletRadius 搜索半径 (米)
	ToiletRadius = 1000
)

// Toilet 附近的开放卫生间
type Toilet struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Address        string  `json:"address"`
	Phone          string  `json:"phone,omitempty"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	DistanceMeters int     `json:"distanceMeters"`
}

// FindToilets 搜索 1km 内的开放卫生间, 按名称+地址去重, 按距离排序
func FindToilets(ctx context.Context, searcher Searcher, lat, lng float64) ([]Toilet, error) {
	if err := utils.ValidateCoordinate(lat, lng); err != nil {
		return nil, err
	}
	places, err := searcher.KeywordSearch(ctx, SearchRequest{
		Query:  ToiletKeyword,
		Lat:    lat,
		Lng:    lng,
		Radius: ToiletRadius,
	})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(places))
	toilets := make([]Toilet, 0, len(places))
	for _, p := range places {
		addr := p.DisplayAddress()
		key := p.Name + "|" + addr
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		dist, err := utils.DistanceMeters(lat, lng, p.Lat, p.Lng)
		if err != nil || dist > ToiletRadius {
			continue
		}
		toilets = append(toilets, Toilet{
			ID:             p.ID,
			Name:           p.Name,
			Address:        addr,
			Phone:          p.Phone,
			Lat:            p.Lat,
			Lng:            p.Lng,
			DistanceMeters: int(math.Round(dist)),
		})
	}
	sort.SliceStable(toilets, func(i, j int) bool {
		return toilets[i].DistanceMeters < toilets[j].DistanceMeters
	})
	return toilets, nil
}
