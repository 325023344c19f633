package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineKm(t *testing.T) {
	// Berlin -> Hamburg, roughly 255 km.
	d := HaversineKm(52.52, 13.405, 53.5511, 9.9937)
	assert.InDelta(t, 255, d, 5)

	assert.Equal(t, 0.0, HaversineKm(52.52, 13.405, 52.52, 13.405))

	// Symmetric.
	assert.InDelta(t,
		HaversineKm(40.7128, -74.006, 34.0522, -118.2437),
		HaversineKm(34.0522, -118.2437, 40.7128, -74.006),
		0.0001)
}

func TestBoundingDeltaCoversRadius(t *testing.T) {
	// Any point within radius must fall inside the latitude delta.
	delta := BoundingDelta(50)
	d := HaversineKm(52.52, 13.405, 52.52+delta, 13.405)
	assert.GreaterOrEqual(t, d, 49.0)
}
