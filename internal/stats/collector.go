package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
)

const ringSize = 60

// Reader is the read-only view presenters use.
type Reader interface {
	Snapshot() Snapshot
	RollingSpeed(seconds int) float64
	RollingFilesPerSec(seconds int) float64
	ETA() time.Duration
	SparklineData(n int) []float64
}

// ReadTicker is a Reader that can also be ticked by its presenter.
type ReadTicker interface {
	Reader
	Tick()
}

// Collector tracks deployment statistics using lock-free atomic counters.
// The session writes counters; presenters only read and Tick.
type Collector struct {
	filesTotal   atomic.Int64
	filesCopied  atomic.Int64
	filesFailed  atomic.Int64
	filesSkipped atomic.Int64
	bytesCopied  atomic.Int64
	dirsCreated  atomic.Int64
	startTime    time.Time

	// Ring buffer, written only by Tick.
	mu          sync.Mutex
	throughput  [ringSize]int64 // bytes delta per second
	filesPerSec [ringSize]int64 // files delta per second
	ringIdx     int
	ringCount   int
	lastBytes   int64
	lastFiles   int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotal records the worklist length once the walk completes.
func (c *Collector) SetTotal(files int64) { c.filesTotal.Store(files) }

func (c *Collector) AddFilesCopied(n int64)  { c.filesCopied.Add(n) }
func (c *Collector) AddFilesFailed(n int64)  { c.filesFailed.Add(n) }
func (c *Collector) AddFilesSkipped(n int64) { c.filesSkipped.Add(n) }
func (c *Collector) AddBytesCopied(n int64)  { c.bytesCopied.Add(n) }
func (c *Collector) AddDirsCreated(n int64)  { c.dirsCreated.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesTotal   int64
	FilesCopied  int64
	FilesFailed  int64
	FilesSkipped int64
	BytesCopied  int64
	DirsCreated  int64
	Elapsed      time.Duration
}

// Done returns how many worklist items have been attempted.
func (s Snapshot) Done() int64 {
	return s.FilesCopied + s.FilesFailed
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesTotal:   c.filesTotal.Load(),
		FilesCopied:  c.filesCopied.Load(),
		FilesFailed:  c.filesFailed.Load(),
		FilesSkipped: c.filesSkipped.Load(),
		BytesCopied:  c.bytesCopied.Load(),
		DirsCreated:  c.dirsCreated.Load(),
		Elapsed:      c.Elapsed(),
	}
}

// Tick snapshots byte/file deltas into the ring buffer. Called 1/sec by the presenter.
func (c *Collector) Tick() {
	currentBytes := c.bytesCopied.Load()
	currentFiles := c.filesCopied.Load() + c.filesFailed.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = currentBytes - c.lastBytes
	c.filesPerSec[c.ringIdx] = currentFiles - c.lastFiles
	c.lastBytes = currentBytes
	c.lastFiles = currentFiles

	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns average bytes/sec over the last n seconds of samples.
func (c *Collector) RollingSpeed(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.throughput[:], seconds)
}

// RollingFilesPerSec returns average files/sec over the last n seconds.
func (c *Collector) RollingFilesPerSec(seconds int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.filesPerSec[:], seconds)
}

func (c *Collector) rollingAvg(buf []int64, n int) float64 {
	count := min(n, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := range count {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += buf[idx]
	}
	return float64(sum) / float64(count)
}

// SparklineData returns the last n throughput samples, oldest first.
func (c *Collector) SparklineData(n int) []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := min(n, c.ringCount)
	out := make([]float64, count)
	for i := range count {
		idx := (c.ringIdx - count + i + ringSize) % ringSize
		out[i] = float64(c.throughput[idx])
	}
	return out
}

// ETA estimates remaining time from the rolling file rate and the number of
// worklist items not yet attempted. Source sizes are not known up front, so
// the estimate is per file rather than per byte.
func (c *Collector) ETA() time.Duration {
	rate := c.RollingFilesPerSec(10)
	if rate <= 0 {
		return 0
	}
	snap := c.Snapshot()
	remaining := snap.FilesTotal - snap.Done()
	if remaining <= 0 {
		return 0
	}
	return time.Duration(float64(remaining) / rate * float64(time.Second))
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"total=%d copied=%d failed=%d skipped=%d bytes=%d dirs=%d",
		s.FilesTotal, s.FilesCopied, s.FilesFailed, s.FilesSkipped,
		s.BytesCopied, s.DirsCreated,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	if b < 0 {
		return "-" + humanize.IBytes(uint64(-b))
	}
	return humanize.IBytes(uint64(b))
}
