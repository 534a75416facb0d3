package core

import "time"

// FixedStep paces simulation generations at a steady rate independent of the
// frame rate driving it.
type FixedStep struct {
	step        time.Duration
	accumulator time.Duration
	last        time.Time
	now         func() time.Time
}

// NewFixedStep constructs a FixedStep targeting gps generations per second.
func NewFixedStep(gps int) *FixedStep {
	fs := &FixedStep{now: time.Now}
	fs.SetRate(gps)
	fs.accumulator = fs.step
	return fs
}

// SetRate changes the generation rate. Non-positive rates fall back to 10.
func (f *FixedStep) SetRate(gps int) {
	if gps <= 0 {
		gps = 10
	}
	f.step = time.Second / time.Duration(gps)
}

// Due reports how many generations should run now, at most limit.
func (f *FixedStep) Due(limit int) int {
	now := f.now()
	if f.last.IsZero() {
		f.last = now
	}
	f.accumulator += now.Sub(f.last)
	f.last = now
	n := 0
	for f.accumulator >= f.step && n < limit {
		f.accumulator -= f.step
		n++
	}
	if n == limit {
		f.accumulator = 0
	}
	return n
}
