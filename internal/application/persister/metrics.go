package persister

import "sync/atomic"

// Counters holds the persister process metrics
type Counters struct {
	received  atomic.Int64
	persisted atomic.Int64
	malformed atomic.Int64
	invalid   atomic.Int64
	dropped   atomic.Int64
}

func NewCounters() *Counters {
	return &Counters{}
}

func (c *Counters) IncReceived()  { c.received.Add(1) }
func (c *Counters) IncPersisted() { c.persisted.Add(1) }
func (c *Counters) IncMalformed() { c.malformed.Add(1) }
func (c *Counters) IncInvalid()   { c.invalid.Add(1) }
func (c *Counters) IncDropped()   { c.dropped.Add(1) }

func (c *Counters) GetReceived() int64  { return c.received.Load() }
func (c *Counters) GetPersisted() int64 { return c.persisted.Load() }
func (c *Counters) GetMalformed() int64 { return c.malformed.Load() }
func (c *Counters) GetInvalid() int64   { return c.invalid.Load() }
func (c *Counters) GetDropped() int64   { return c.dropped.Load() }
