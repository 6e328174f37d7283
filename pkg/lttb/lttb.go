// Package lttb implements largest-triangle-three-buckets downsampling
// for time series that must keep their visual shape at a reduced point
// count.
package lttb

// Point is one (timestamp, value) sample.
type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Downsample reduces an ordered series to exactly k points. The first
// and last points are always kept; the interior is split into k-2
// buckets and each bucket contributes the point spanning the largest
// triangle with the previously kept point and the next bucket's
// average. Returns the input unchanged when n <= k or k < 3.
func Downsample(points []Point, k int) []Point {
	n := len(points)

	if k < 3 || n <= k {
		return points
	}

	sampled := make([]Point, 0, k)
	sampled = append(sampled, points[0])

	// Interior points split across k-2 buckets.
	bucketSize := float64(n-2) / float64(k-2)

	prev := points[0]

	for i := 0; i < k-2; i++ {
		lo := int(float64(i)*bucketSize) + 1
		hi := int(float64(i+1)*bucketSize) + 1

		if hi > n-1 {
			hi = n - 1
		}

		avg := averagePoint(points, hi, n, i, bucketSize)

		best := points[lo]
		bestArea := -1.0

		for j := lo; j < hi; j++ {
			area := triangleArea(prev, points[j], avg)

			if area > bestArea {
				bestArea = area
				best = points[j]
			}
		}

		sampled = append(sampled, best)
		prev = best
	}

	sampled = append(sampled, points[n-1])

	return sampled
}

// averagePoint computes the mean of the following bucket; the last
// bucket averages down to the final point.
func averagePoint(points []Point, from, n, bucket int, bucketSize float64) Point {
	to := int(float64(bucket+2)*bucketSize) + 1

	if to > n-1 {
		to = n - 1
	}

	if from >= to {
		return points[n-1]
	}

	var ts, val float64

	for j := from; j < to; j++ {
		ts += float64(points[j].Timestamp)
		val += points[j].Value
	}

	count := float64(to - from)

	return Point{Timestamp: int64(ts / count), Value: val / count}
}

// triangleArea is twice the unsigned area via the cross product; the
// factor cancels in comparisons so it is left out.
func triangleArea(a, b, c Point) float64 {
	area := float64(a.Timestamp-c.Timestamp)*(b.Value-a.Value) -
		float64(a.Timestamp-b.Timestamp)*(c.Value-a.Value)

	if area < 0 {
		return -area
	}

	return area
}
