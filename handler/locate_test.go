package handler

import (
	"net/http"
	"testing"

	"palace-guide/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodPost, "/api/locate", `{"latitude": 37.5796, "longitude": 126.9770}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, map[string]interface{}{"id": "geunjeongjeon", "name": "근정전"}, body["building"])
	assert.Equal(t, float64(0), body["distanceMeters"])
	assert.Equal(t, true, body["insideManagedArea"])

	require.Len(t, env.events.events, 1)
	assert.Equal(t, "geunjeongjeon", env.events.events[0].BuildingID)
}

func TestLocateOutsideArea(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	w := env.do(http.MethodPost, "/api/locate", `{"latitude": 37.5700, "longitude": 126.9770}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["insideManagedArea"])
	assert.Equal(t, "gyeonghoeru", body["building"].(map[string]interface{})["id"])
	assert.Greater(t, body["distanceMeters"].(float64), 900.0)
}

func TestLocateEmptyCatalog(t *testing.T) {
	env := newTestEnv(t, []model.Building{}, nil)
	w := env.do(http.MethodPost, "/api/locate", `{"latitude": 37.5796, "longitude": 126.9770}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Nil(t, body["building"])
	assert.NotContains(t, body, "distanceMeters")
	assert.Equal(t, true, body["insideManagedArea"])
	assert.Empty(t, env.events.events)
}

func TestLocateBadRequest(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	cases := map[string]string{
		"missing longitude": `{"latitude": 37.5796}`,
		"non numeric":       `{"latitude": "abc", "longitude": 126.977}`,
		"out of range":      `{"latitude": 91, "longitude": 126.977}`,
		"not json":          `latitude=1`,
		"empty":             ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/api/locate", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w), "error")
		})
	}
}

func TestCheckLocationMessage(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	w := env.do(http.MethodPost, "/api/check-location", `{"latitude": 37.5796, "longitude": 126.9770}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "📍 근정전 (0m) - 촬영 가능", body["message"])
	assert.Equal(t, true, body["nearBuilding"])

	w = env.do(http.MethodPost, "/api/check-location", `{"latitude": 37.5788, "longitude": 126.9800}`)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, false, body["inGyeongbokgung"])
	assert.Contains(t, body["message"], "경복궁 밖에서 촬영")

	empty := newTestEnv(t, []model.Building{}, nil)
	body = decode(t, empty.do(http.MethodPost, "/api/check-location", `{"latitude": 37.5796, "longitude": 126.9770}`))
	assert.Equal(t, "위치를 확인할 수 없습니다.", body["message"])
	assert.Equal(t, false, body["nearBuilding"])
}
