package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	const goroutines = 100
	const opsPerGoroutine = 1000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for range goroutines {
		go func() {
			defer wg.Done()
			for range opsPerGoroutine {
				c.AddFilesCopied(1)
				c.AddFilesFailed(1)
				c.AddFilesSkipped(1)
				c.AddBytesCopied(256)
				c.AddDirsCreated(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	expected := int64(goroutines * opsPerGoroutine)
	assert.Equal(t, expected, s.FilesCopied)
	assert.Equal(t, expected, s.FilesFailed)
	assert.Equal(t, expected, s.FilesSkipped)
	assert.Equal(t, expected*256, s.BytesCopied)
	assert.Equal(t, expected, s.DirsCreated)
	assert.Equal(t, 2*expected, s.Done())
}

func TestSnapshotString(t *testing.T) {
	s := Snapshot{
		FilesTotal:   10,
		FilesCopied:  8,
		FilesFailed:  1,
		FilesSkipped: 4,
		BytesCopied:  4096,
		DirsCreated:  3,
	}
	assert.Equal(t, "total=10 copied=8 failed=1 skipped=4 bytes=4096 dirs=3", s.String())
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		input    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
		{-1024, "-1.0 KiB"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			require.Equal(t, tt.expected, FormatBytes(tt.input))
		})
	}
}

func TestSetTotal(t *testing.T) {
	c := NewCollector()
	c.SetTotal(42)
	assert.Equal(t, int64(42), c.Snapshot().FilesTotal)
}

func TestRollingSpeed(t *testing.T) {
	c := NewCollector()
	assert.Zero(t, c.RollingSpeed(5), "no samples yet")

	c.AddBytesCopied(1000)
	c.AddFilesCopied(2)
	c.Tick()
	c.AddBytesCopied(3000)
	c.AddFilesCopied(4)
	c.Tick()

	assert.InDelta(t, 2000.0, c.RollingSpeed(2), 0.001)
	assert.InDelta(t, 3000.0, c.RollingSpeed(1), 0.001)
	assert.InDelta(t, 3.0, c.RollingFilesPerSec(10), 0.001)
}

func TestRingWraps(t *testing.T) {
	c := NewCollector()
	for range ringSize + 10 {
		c.AddBytesCopied(10)
		c.Tick()
	}
	assert.InDelta(t, 10.0, c.RollingSpeed(ringSize), 0.001)
}

func TestETA(t *testing.T) {
	c := NewCollector()
	c.SetTotal(10)
	assert.Zero(t, c.ETA(), "no rate yet")

	c.AddFilesCopied(2)
	c.Tick()
	assert.Equal(t, 4*time.Second, c.ETA())

	c.AddFilesCopied(8)
	c.Tick()
	assert.Zero(t, c.ETA(), "nothing remaining")
}

func TestElapsed(t *testing.T) {
	c := NewCollector()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, c.Elapsed(), 5*time.Millisecond)
}

func TestSparklineData(t *testing.T) {
	c := NewCollector()
	assert.Empty(t, c.SparklineData(5))

	for _, n := range []int64{10, 20, 30} {
		c.AddBytesCopied(n)
		c.Tick()
	}
	assert.Equal(t, []float64{10, 20, 30}, c.SparklineData(5))
	assert.Equal(t, []float64{20, 30}, c.SparklineData(2))
}
