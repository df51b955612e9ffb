package places

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindToilets(t *testing.T) {
	s := &fakeSearcher{results: map[string][]Place{
		ToiletKeyword: {
			{ID: "1", Name: "경복궁 화장실", RoadAddress: "사직로 161", Lat: 37.5790, Lng: 126.9770},
			{ID: "2", Name: "광화문 화장실", Address: "세종로 1", Lat: 37.5760, Lng: 126.9769},
			// 名称+地址重复
			{ID: "3", Name: "경복궁 화장실", RoadAddress: "사직로 161", Lat: 37.5790, Lng: 126.9770},
			// 超出 1km
			{ID: "4", Name: "먼 화장실", Address: "어딘가", Lat: 37.6000, Lng: 126.9770},
		},
	}}

	toilets, err := FindToilets(context.Background(), s, 37.5796, 126.9770)
	require.NoError(t, err)
	require.Len(t, toilets, 2)
	assert.Equal(t, "1", toilets[0].ID)
	assert.Equal(t, "2", toilets[1].ID)
	assert.Equal(t, "세종로 1", toilets[1].Address)
	assert.Less(t, toilets[0].DistanceMeters, toilets[1].DistanceMeters)
	assert.Equal(t, []string{ToiletKeyword}, s.queries)
}

func TestFindToiletsErrors(t *testing.T) {
	_, err := FindToilets(context.Background(), &fakeSearcher{}, 100, 0)
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = FindToilets(context.Background(), &fakeSearcher{err: boom}, 37.5796, 126.9770)
	assert.ErrorIs(t, err, boom)
}
