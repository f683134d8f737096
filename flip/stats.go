package flip

import "time"

// Stats is frame timing information. It is reported for observation only and
// never influences scheduling.
type Stats struct {
	Frames  uint64        // completions handled
	Elapsed time.Duration // since the loop started
	Delta   time.Duration // since the previous completion
}

// AverageFPS is the mean frame rate since the loop started.
func (s Stats) AverageFPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// InstantFPS is the frame rate derived from the last frame interval.
func (s Stats) InstantFPS() float64 {
	if s.Delta <= 0 {
		return 0
	}
	return 1 / s.Delta.Seconds()
}

// Reporter receives Stats after every completion.
type Reporter func(Stats)

type clock struct {
	now   func() time.Time
	start time.Time
	last  time.Time
	stats Stats
}

func (c *clock) time() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c *clock) reset() {
	c.start = c.time()
	c.last = c.start
	c.stats = Stats{}
}

func (c *clock) tick() Stats {
	t := c.time()
	c.stats.Frames++
	c.stats.Elapsed = t.Sub(c.start)
	c.stats.Delta = t.Sub(c.last)
	c.last = t
	return c.stats
}
