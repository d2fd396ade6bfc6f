package edge

import "sync/atomic"

// Counters holds the edge process metrics
type Counters struct {
	sampled   atomic.Int64
	skipped   atomic.Int64
	dropped   atomic.Int64
	published atomic.Int64
	failed    atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) IncSampled()   { c.sampled.Add(1) }
func (c *Counters) IncSkipped()   { c.skipped.Add(1) }
func (c *Counters) IncDropped()   { c.dropped.Add(1) }
func (c *Counters) IncPublished() { c.published.Add(1) }
func (c *Counters) IncFailed()    { c.failed.Add(1) }

func (c *Counters) GetSampled() int64   { return c.sampled.Load() }
func (c *Counters) GetSkipped() int64   { return c.skipped.Load() }
func (c *Counters) GetDropped() int64   { return c.dropped.Load() }
func (c *Counters) GetPublished() int64 { return c.published.Load() }
func (c *Counters) GetFailed() int64    { return c.failed.Load() }
