package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"palace-guide/places"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSearcher 所有关键字返回同一组结果
type stubSearcher struct {
	places []places.Place
	err    error
}

func (s stubSearcher) KeywordSearch(context.Context, places.SearchRequest) ([]places.Place, error) {
	return s.places, s.err
}

func TestIdentifyUsesPlaceSearch(t *testing.T) {
	s := stubSearcher{places: []places.Place{{ID: "1", Name: "경복궁 경회루", Lat: 37.5788, Lng: 126.9770}}}
	env := newTestEnv(t, nil, s)

	w := env.do(http.MethodPost, "/api/identify", `{"latitude": 37.5789, "longitude": 126.9770}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, places.SourceMap, body["source"])
	assert.Equal(t, "경회루을(를) 식별했습니다!", body["message"])
	assert.Equal(t, places.PalaceAddress, body["address"])
	assert.Equal(t, "gyeonghoeru", body["building"].(map[string]interface{})["id"])
}

func TestIdentifyFallsBackToDistance(t *testing.T) {
	env := newTestEnv(t, nil, stubSearcher{err: errors.New("unavailable")})

	w := env.do(http.MethodPost, "/api/identify", `{"latitude": 37.5796, "longitude": 126.9770}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, places.SourceDistance, body["source"])
	assert.Equal(t, "geunjeongjeon", body["building"].(map[string]interface{})["id"])
	require.Len(t, env.events.events, 1)
	assert.Equal(t, "identify", env.events.events[0].Source)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/identify", `{"latitude": 37.5}`).Code)
}

func TestToilets(t *testing.T) {
	s := stubSearcher{places: []places.Place{
		{ID: "1", Name: "경복궁 화장실", RoadAddress: "사직로 161", Lat: 37.5790, Lng: 126.9770},
	}}
	env := newTestEnv(t, nil, s)

	w := env.do(http.MethodGet, "/api/toilets?lat=37.5796&lng=126.9770", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(1), body["count"])

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/toilets?lat=abc&lng=126.9", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/toilets?lat=95&lng=126.9", "").Code)

	failing := newTestEnv(t, nil, stubSearcher{err: errors.New("down")})
	assert.Equal(t, http.StatusBadGateway, failing.do(http.MethodGet, "/api/toilets?lat=37.5796&lng=126.9770", "").Code)

	disabled := newTestEnv(t, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, disabled.do(http.MethodGet, "/api/toilets?lat=37.5796&lng=126.9770", "").Code)
}
