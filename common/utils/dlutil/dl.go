package dlutil

import (
	"time"
)

var threadsLevels = []struct {
	threads int
	size    int64
}{
	{1, 10 << 20},
	{2, 50 << 20},
	{4, 200 << 20},
	{8, 500 << 20},
}

// BestThreads picks a parallelism for a transfer of size bytes, capped at max.
func BestThreads(size int64, max int) int {
	if max < 1 {
		max = 1
	}
	for _, thread := range threadsLevels {
		if size < thread.size {
			return min(thread.threads, max)
		}
	}
	return max
}

// GetSpeed returns bytes per second since start.
func GetSpeed(done int64, start, now time.Time) float64 {
	if start.IsZero() {
		return 0
	}
	elapsed := now.Sub(start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(done) / elapsed
}

// ETA estimates the remaining time. It returns -1 when the speed is unknown.
func ETA(done, total int64, speed float64) time.Duration {
	if speed <= 0 || total <= 0 {
		return -1
	}
	remaining := total - done
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / speed * float64(time.Second))
}
