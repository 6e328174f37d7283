package lttb

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func makeSeries(n int) []Point {
	points := make([]Point, n)

	for i := range points {
		points[i] = Point{
			Timestamp: int64(i * 60),
			Value:     100 + 50*math.Sin(float64(i)/10),
		}
	}

	return points
}

func TestDownsampleReturnsExactCount(t *testing.T) {
	points := makeSeries(1000)

	sampled := Downsample(points, 100)

	assert.Len(t, sampled, 100)
	assert.Equal(t, points[0], sampled[0], "first point is always kept")
	assert.Equal(t, points[999], sampled[99], "last point is always kept")
}

func TestDownsampleSmallSeriesUnchanged(t *testing.T) {
	points := makeSeries(50)

	sampled := Downsample(points, 100)

	assert.Equal(t, points, sampled)
}

func TestDownsampleTinyTargetUnchanged(t *testing.T) {
	points := makeSeries(10)

	assert.Equal(t, points, Downsample(points, 2))
	assert.Equal(t, points, Downsample(points, 0))
}

func TestDownsampleKeepsSpike(t *testing.T) {
	points := makeSeries(300)
	points[150].Value = 10000

	sampled := Downsample(points, 30)

	found := false

	for _, p := range sampled {
		if p.Value == 10000 {
			found = true
		}
	}

	assert.True(t, found, "the dominant spike survives downsampling")
}

func TestDownsampleIsDeterministic(t *testing.T) {
	points := makeSeries(500)

	assert.Equal(t, Downsample(points, 40), Downsample(points, 40))
}

func TestDownsampleMonotoneTimestamps(t *testing.T) {
	sampled := Downsample(makeSeries(800), 50)

	for i := 1; i < len(sampled); i++ {
		assert.Greater(t, sampled[i].Timestamp, sampled[i-1].Timestamp)
	}
}
