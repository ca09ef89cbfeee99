package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointsMonotonicity(t *testing.T) {
	require.Equal(t, 5000, Points(0))

	prev := Points(0)
	for _, d := range []float64{1, 10, 100, 1000, 5000, 20000, 1000000, 19_000_000} {
		p := Points(d)
		assert.LessOrEqualf(t, p, prev, "points should not increase with distance (d=%v)", d)
		assert.GreaterOrEqual(t, p, 0)
		prev = p
	}

	assert.Equal(t, 0, Points(20_037_508*1000))
}

func TestPointsS1Scenario(t *testing.T) {
	// Paris (48.8566, 2.3522) to (48.8566, 3.0)
	d := DistanceMeters(48.8566, 2.3522, 48.8566, 3.0)
	assert.InDelta(t, 47186, d, 500)

	p := Points(d)
	assert.InDelta(t, 4558, p, 10)
}

func TestDistanceZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceMeters(10, 10, 10, 10))
}

func TestRandomLocationsDistinctAndBounded(t *testing.T) {
	locs := make([]Location, 0, 20)
	for i := 0; i < 20; i++ {
		locs = append(locs, Location{Latitude: float64(i), Longitude: float64(i)})
	}
	cat := NewCatalog(locs)

	picked, err := cat.RandomLocations(5)
	require.NoError(t, err)
	require.Len(t, picked, 5)

	seen := map[float64]bool{}
	for _, l := range picked {
		assert.False(t, seen[l.Latitude], "duplicate location picked")
		seen[l.Latitude] = true
	}

	all, err := cat.RandomLocations(1000)
	require.NoError(t, err)
	assert.Len(t, all, 20)
}
