// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/lfq"
)

// inboxCapacity bounds the callbacks queued between two polls.
const inboxCapacity = 256

// Source is an external event source: a host timer, I/O completion or
// callback that may unblock tasks. While any Source of a scheduler is open,
// an all-blocked scheduler waits for it instead of reporting deadlock.
//
// Post and Close are safe to call from any goroutine. Posted callbacks run
// on the goroutine driving the scheduler, between task segments, where they
// may use [Chan.TrySend], [Chan.TryRecv], [Chan.Close], [Spawn] and
// [Scheduler.Cancel].
type Source struct {
	s      *Scheduler
	closed atomix.Bool
}

// NewSource opens an external event source on s.
func (s *Scheduler) NewSource() *Source {
	s.inbox.open.Add(1)
	return &Source{s: s}
}

// Post queues fn to run on the scheduler's goroutine.
// Returns iox.ErrWouldBlock when the inbox is full and
// ErrInvalidOperation after Close.
func (src *Source) Post(fn func()) error {
	in := &src.s.inbox
	// Pin the open count so the driver cannot observe zero open sources
	// while fn is still on its way into the queue.
	in.open.Add(1)
	defer in.open.Add(-1)
	if src.closed.Load() {
		return invalidf("post on closed source")
	}
	return in.q.Enqueue(&fn)
}

// Close releases the source. Callbacks posted before Close still run.
// Close is idempotent.
func (src *Source) Close() {
	if src.closed.CompareAndSwap(false, true) {
		src.s.inbox.open.Add(-1)
	}
}

// inbox is the goroutine-safe ingress of host callbacks: many posting
// goroutines, one consumer, the goroutine driving the scheduler.
type inbox struct {
	q    lfq.MPSC[func()]
	open atomix.Int32
}

// poll runs the callbacks queued so far and reports how many ran, and
// how many sources were open before the queue was read. A zero open count
// with nothing run means no callback can arrive any more.
func (s *Scheduler) poll() (ran int, open int32) {
	// Load before draining: whatever a source posted before closing is
	// then visible below.
	open = s.inbox.open.Load()
	for ran < s.inbox.q.Cap() {
		fn, err := s.inbox.q.Dequeue()
		if err != nil {
			break
		}
		fn()
		ran++
	}
	return ran, open
}
