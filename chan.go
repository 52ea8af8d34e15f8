// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// Chan is a typed FIFO channel owned by one [Scheduler].
//
// A Chan has no lock: every operation runs on the goroutine driving its
// scheduler, either inside a task segment or inside a [Source] callback.
// The buffer is a bounded SPSC ring from lfq; its single producer and
// single consumer are both that goroutine.
type Chan[T any] struct {
	s      *Scheduler
	id     uint32
	cap    int
	n      int
	buf    lfq.SPSC[T]
	sendq  waitq[T]
	recvq  waitq[T]
	closed bool
}

// MakeChan creates a channel with the given capacity on s.
// Capacity 0 makes every send rendezvous with a receiver.
// MakeChan panics if capacity is negative, as make does.
func MakeChan[T any](s *Scheduler, capacity int) *Chan[T] {
	if capacity < 0 {
		panic("csp: makechan: size out of range")
	}
	s.chans++
	c := &Chan[T]{s: s, id: s.chans, cap: capacity}
	if capacity > 0 {
		c.buf.Init(ringSize(capacity))
	}
	return c
}

// ringSize returns the ring size backing a buffer of n values: n+1 rounded
// up to a power of two. The channel's own count enforces n.
func ringSize(n int) int {
	size := 2
	for size < n+1 {
		size <<= 1
	}
	return size
}

// Len returns the number of buffered values. A nil channel has length 0.
func (c *Chan[T]) Len() int {
	if c == nil {
		return 0
	}
	return c.n
}

// Cap returns the channel capacity. A nil channel has capacity 0.
func (c *Chan[T]) Cap() int {
	if c == nil {
		return 0
	}
	return c.cap
}

// Closed reports whether the channel has been closed.
func (c *Chan[T]) Closed() bool {
	return c != nil && c.closed
}

func (c *Chan[T]) String() string {
	if c == nil {
		return "chan <nil>"
	}
	return fmt.Sprintf("chan#%d(cap %d)", c.id, c.cap)
}

// TrySend sends v without blocking. It must be called on the goroutine
// driving the scheduler (a task body or a Source callback).
// Returns iox.ErrWouldBlock when no receiver waits and the buffer is full.
func (c *Chan[T]) TrySend(v T) error {
	if c == nil {
		return invalidf("send on nil channel")
	}
	done, err := c.trySend(v)
	if err != nil {
		return err
	}
	if !done {
		return iox.ErrWouldBlock
	}
	return nil
}

// TryRecv receives without blocking. ok is false once the channel is
// closed and drained. Returns iox.ErrWouldBlock when nothing is available.
func (c *Chan[T]) TryRecv() (v T, ok bool, err error) {
	if c == nil {
		return v, false, invalidf("recv on nil channel")
	}
	v, ok, done := c.tryRecv()
	if !done {
		return v, false, iox.ErrWouldBlock
	}
	return v, ok, nil
}

// Close closes the channel from host code. Tasks use the [Close] effect.
func (c *Chan[T]) Close() error {
	if c == nil {
		return invalidf("close of nil channel")
	}
	return c.close()
}

// check validates that c can be operated on by tasks of s.
func (c *Chan[T]) check(s *Scheduler) error {
	if c == nil {
		return invalidf("operation on nil channel")
	}
	if c.s != s {
		return invalidf("%s belongs to scheduler %d", c, c.s.serial)
	}
	return nil
}

// trySend completes a send without parking if possible. A waiting
// receiver is served before the buffer is touched.
func (c *Chan[T]) trySend(v T) (bool, error) {
	if c.closed {
		return false, fmt.Errorf("%w: %s", ErrClosedChannelSend, c)
	}
	if w := c.recvq.pop(); w != nil {
		c.s.wake(w.task, w.received(v, true))
		return true, nil
	}
	if c.n < c.cap {
		c.push(v)
		return true, nil
	}
	return false, nil
}

// tryRecv completes a receive without parking if possible.
// Buffered values drain before the closed indicator is reported.
func (c *Chan[T]) tryRecv() (v T, ok, done bool) {
	if c.n > 0 {
		v = c.pop()
		// Refill the freed slot from the oldest parked sender.
		if w := c.sendq.pop(); w != nil {
			c.push(w.value)
			c.s.wake(w.task, w.sent(nil))
		}
		return v, true, true
	}
	if w := c.sendq.pop(); w != nil {
		c.s.wake(w.task, w.sent(nil))
		return w.value, true, true
	}
	if c.closed {
		return v, false, true
	}
	return v, false, false
}

// close marks the channel closed and wakes every parked task. Both wait
// queues are detached before any task is woken, since waking a select
// removes that task's registrations from live queues.
func (c *Chan[T]) close() error {
	if c.closed {
		return fmt.Errorf("%w: %s", ErrDoubleClose, c)
	}
	c.closed = true
	receivers := c.recvq.drain()
	senders := c.sendq.drain()

	var zero T
	for _, w := range receivers {
		if !w.done {
			c.s.wake(w.task, w.received(zero, false))
		}
	}
	err := fmt.Errorf("%w: %s", ErrClosedChannelSend, c)
	for _, w := range senders {
		if !w.done {
			c.s.wake(w.task, w.sent(err))
		}
	}
	return nil
}

func (c *Chan[T]) push(v T) {
	if err := c.buf.Enqueue(&v); err != nil {
		panic("csp: channel ring rejected a value within capacity")
	}
	c.n++
}

func (c *Chan[T]) pop() T {
	v, err := c.buf.Dequeue()
	if err != nil {
		panic("csp: channel ring empty with buffered count > 0")
	}
	c.n--
	return v
}

// parkSender queues a sender waiter for task id. index is the select case
// index, or noCase for a plain send.
func (c *Chan[T]) parkSender(id TaskID, index int, v T) *waiter[T] {
	w := &waiter[T]{c: c, task: id, index: index, value: v, send: true}
	c.sendq.push(w)
	return w
}

// parkReceiver queues a receiver waiter for task id.
func (c *Chan[T]) parkReceiver(id TaskID, index int) *waiter[T] {
	w := &waiter[T]{c: c, task: id, index: index}
	c.recvq.push(w)
	return w
}
