package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bamsammich/assetsync/internal/bundle"
	"github.com/bamsammich/assetsync/internal/dest"
)

// Policy selects how an existing destination file is judged up to date.
type Policy int

const (
	// PolicySize treats equal byte lengths as unchanged. Two different files
	// of the same length are indistinguishable under this policy.
	PolicySize Policy = iota
	// PolicyDigest additionally compares BLAKE3 digests when sizes match.
	PolicyDigest
)

func (p Policy) String() string {
	if p == PolicyDigest {
		return "digest"
	}
	return "size"
}

// ParsePolicy parses "size" or "digest".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "size":
		return PolicySize, nil
	case "digest":
		return PolicyDigest, nil
	default:
		return PolicySize, fmt.Errorf("unknown staleness policy %q (want size or digest)", s)
	}
}

// Reason explains a staleness verdict.
type Reason int

const (
	Unchanged Reason = iota
	Missing
	SizeMismatch
	ProbeFailed
	DigestMismatch
	Excluded // filtered out before the detector runs
)

var reasonNames = [...]string{
	Unchanged:      "unchanged",
	Missing:        "missing",
	SizeMismatch:   "size mismatch",
	ProbeFailed:    "probe failed",
	DigestMismatch: "digest mismatch",
	Excluded:       "excluded",
}

func (r Reason) String() string {
	if r >= 0 && int(r) < len(reasonNames) {
		return reasonNames[r]
	}
	return "unknown"
}

// NeedsCopy reports whether the verdict requires a (re)copy.
func (r Reason) NeedsCopy() bool {
	return r != Unchanged && r != Excluded
}

// Detector decides whether a leaf's destination copy may be skipped. It only
// reads; it never modifies either side.
type Detector struct {
	src    bundle.Provider
	dst    *dest.Target
	policy Policy
	logger *slog.Logger
}

// NewDetector creates a Detector.
func NewDetector(src bundle.Provider, dst *dest.Target, policy Policy, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{src: src, dst: dst, policy: policy, logger: logger}
}

// NeedsCopy is Check(ctx, rel).NeedsCopy().
func (d *Detector) NeedsCopy(ctx context.Context, rel string) bool {
	return d.Check(ctx, rel).NeedsCopy()
}

// Check compares the bundle entry rel with its destination counterpart.
// Any probe that cannot be completed answers ProbeFailed, which forces a
// copy rather than risk keeping stale data.
func (d *Detector) Check(ctx context.Context, rel string) Reason {
	dstSize, exists, err := d.dst.Stat(rel)
	if err != nil {
		d.logger.Debug("destination probe failed", "path", rel, "error", err)
		return ProbeFailed
	}
	if !exists {
		return Missing
	}

	srcSize, err := d.src.Size(ctx, rel)
	if err != nil {
		d.logger.Debug("source size probe failed", "path", rel, "error", err)
		return ProbeFailed
	}
	if srcSize != dstSize {
		return SizeMismatch
	}

	if d.policy == PolicyDigest {
		return d.compareDigests(ctx, rel)
	}
	return Unchanged
}

func (d *Detector) compareDigests(ctx context.Context, rel string) Reason {
	srcSum, err := d.sourceDigest(ctx, rel)
	if err != nil {
		d.logger.Debug("source digest failed", "path", rel, "error", err)
		return ProbeFailed
	}
	dstSum, err := d.destDigest(rel)
	if err != nil {
		d.logger.Debug("destination digest failed", "path", rel, "error", err)
		return ProbeFailed
	}
	if srcSum != dstSum {
		return DigestMismatch
	}
	return Unchanged
}

func (d *Detector) sourceDigest(ctx context.Context, rel string) (string, error) {
	rc, err := d.src.Open(ctx, rel)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return hashReader(rc)
}

func (d *Detector) destDigest(rel string) (string, error) {
	rc, err := d.dst.Open(rel)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return hashReader(rc)
}
