package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	buildings, err := Default()
	require.NoError(t, err)
	require.Len(t, buildings, 27)

	assert.Equal(t, "gyeonghoeru", buildings[0].ID)
	assert.Equal(t, "근정전", buildings[1].Name)
	for i, b := range buildings {
		assert.Equal(t, i, b.SortOrder, b.ID)
		assert.NotEmpty(t, b.Name, b.ID)
		assert.NotEmpty(t, b.Features, b.ID)
		assert.NotZero(t, b.Lat, b.ID)
		assert.NotZero(t, b.Lng, b.ID)
	}
}

func TestParseAppliesDefaults(t *testing.T) {
	buildings, err := Parse([]byte(`{"buildings":[{"id":"a","name":"가","lat":1,"lng":2}]}`))
	require.NoError(t, err)
	require.Len(t, buildings, 1)

	b := buildings[0]
	assert.Equal(t, DefaultDescription, b.Description)
	assert.Equal(t, DefaultDescription, b.DetailedDescription)
	assert.Equal(t, DefaultBuildYear, b.BuildYear)
	assert.Equal(t, DefaultCulturalProperty, b.CulturalProperty)
	assert.Equal(t, float64(DefaultRadius), b.Radius)
	if diff := cmp.Diff([]string{DefaultFeature}, []string(b.Features)); diff != "" {
		t.Errorf("features mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed json", `{"buildings":`},
		{"missing id", `{"buildings":[{"name":"가"}]}`},
		{"duplicate id", `{"buildings":[{"id":"a"},{"id":"a"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
