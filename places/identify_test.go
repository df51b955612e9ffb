package places

import (
	"context"
	"errors"
	"sync"
	"testing"

	"palace-guide/algo"
	"palace-guide/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher 按关键字返回固定结果
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]Place
	err     error
	queries []string
}

func (f *fakeSearcher) KeywordSearch(_ context.Context, req SearchRequest) ([]Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, req.Query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[req.Query], nil
}

type fakeGeocoder struct {
	addr string
	err  error
}

func (f fakeGeocoder) Coord2Address(context.Context, float64, float64) (string, error) {
	return f.addr, f.err
}

func testResolver(t *testing.T) *algo.Resolver {
	t.Helper()
	buildings, err := catalog.Default()
	require.NoError(t, err)
	return algo.NewResolver(buildings, algo.Gyeongbokgung)
}

func TestIdentifyMatchesCatalogByName(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Place{
		"경회루": {{ID: "a", Name: "경복궁 경회루", Lat: 37.5797, Lng: 126.9762}},
		"근정전": {{ID: "b", Name: "경복궁 근정전", Lat: 37.5796, Lng: 126.9770}},
	}}
	id := NewIdentifier(s, nil, testResolver(t))

	res, err := id.Identify(context.Background(), 37.5796, 126.9770)
	require.NoError(t, err)
	assert.Equal(t, SourceMap, res.Source)
	require.NotNil(t, res.Building)
	assert.Equal(t, "geunjeongjeon", res.Building.ID)
	assert.Equal(t, 0, res.Building.DistanceMeters)
	assert.True(t, res.Building.InsideManagedArea)
	assert.Equal(t, PalaceAddress, res.Address)
	assert.Len(t, s.queries, len(DefaultKeywords))
}

func TestIdentifyGeneralEntry(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Place{
		"경복궁": {{ID: "g", Name: "경복궁", Lat: 37.5797, Lng: 126.9770}},
	}}
	res, err := NewIdentifier(s, nil, testResolver(t)).Identify(context.Background(), 37.5796, 126.9770)
	require.NoError(t, err)
	assert.Equal(t, SourceMap, res.Source)
	assert.Equal(t, GeneralBuilding.ID, res.Building.ID)
}

func TestIdentifyIgnoresFarAndUnrelatedPlaces(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Place{
		// 名称不含 경복궁
		"근정전": {{ID: "x", Name: "근정전 카페", Lat: 37.5796, Lng: 126.9770}},
		// 超过 200m
		"경복궁": {{ID: "y", Name: "경복궁역", Lat: 37.5758, Lng: 126.9735}},
	}}
	res, err := NewIdentifier(s, nil, testResolver(t)).Identify(context.Background(), 37.5796, 126.9770)
	require.NoError(t, err)
	assert.Equal(t, SourceDistance, res.Source)
	assert.Equal(t, "geunjeongjeon", res.Building.ID)
}

func TestIdentifyFallsBackWhenSearchFails(t *testing.T) {
	s := &fakeSearcher{err: errors.New("quota exceeded")}
	res, err := NewIdentifier(s, nil, testResolver(t)).Identify(context.Background(), 37.5788, 126.9770)
	require.NoError(t, err)
	assert.Equal(t, SourceDistance, res.Source)
	assert.Equal(t, "gyeonghoeru", res.Building.ID)
	assert.Nil(t, res.Place)
}

func TestIdentifyWithoutSearcher(t *testing.T) {
	res, err := NewIdentifier(nil, nil, testResolver(t)).Identify(context.Background(), 37.5796, 126.9770)
	require.NoError(t, err)
	assert.Equal(t, SourceDistance, res.Source)

	_, err = NewIdentifier(nil, nil, testResolver(t)).Identify(context.Background(), 91, 0)
	assert.Error(t, err)
}

func TestAddressHint(t *testing.T) {
	r := testResolver(t)
	near := &GeneralBuilding

	assert.Equal(t, PalaceAddress, NewIdentifier(nil, nil, r).AddressHint(context.Background(), 37.5796, 126.9770, near))
	assert.Equal(t, "현재 위치 (경복궁 인근)", NewIdentifier(nil, nil, r).AddressHint(context.Background(), 37.5700, 126.9700, near))

	geo := fakeGeocoder{addr: "서울 종로구 세종대로 172"}
	assert.Equal(t, "서울 종로구 세종대로 172", NewIdentifier(nil, geo, r).AddressHint(context.Background(), 37.5700, 126.9700, near))

	failing := fakeGeocoder{err: errors.New("boom")}
	assert.Equal(t, "현재 위치 (경복궁 인근)", NewIdentifier(nil, failing, r).AddressHint(context.Background(), 37.5700, 126.9700, nil))
}
