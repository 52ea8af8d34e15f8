// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"slices"

	"code.hybscloud.com/kont"
)

// noCase is the waiter index of a plain send or receive.
const noCase = -1

// registration is one wait-queue entry held by a parked task.
// Deregistering removes the entry from its channel queue.
type registration interface {
	deregister()
}

// waiter is a parked send or receive. It refers to its task by id only;
// the scheduler's table owns the task.
type waiter[T any] struct {
	c     *Chan[T]
	task  TaskID
	index int // select case index, or noCase
	value T   // the offered value, for senders
	send  bool
	done  bool
}

// received builds the resume value for a receiver that got v.
func (w *waiter[T]) received(v T, ok bool) kont.Resumed {
	if w.index == noCase {
		return Received[T]{Value: v, OK: ok}
	}
	return Selected{Index: w.index, Value: v, OK: ok}
}

// sent builds the resume value for a sender completed with err.
func (w *waiter[T]) sent(err error) kont.Resumed {
	if w.index == noCase {
		return outcome(err)
	}
	return Selected{Index: w.index, OK: err == nil, Err: err}
}

func (w *waiter[T]) deregister() {
	w.done = true
	if w.send {
		w.c.sendq.remove(w)
	} else {
		w.c.recvq.remove(w)
	}
}

// waitq is a FIFO of parked waiters on one side of a channel.
type waitq[T any] struct {
	ws []*waiter[T]
}

func (q *waitq[T]) push(w *waiter[T]) {
	q.ws = append(q.ws, w)
}

// pop removes and returns the oldest live waiter, or nil.
func (q *waitq[T]) pop() *waiter[T] {
	for len(q.ws) > 0 {
		w := q.ws[0]
		q.ws[0] = nil
		q.ws = q.ws[1:]
		if !w.done {
			return w
		}
	}
	return nil
}

// ready reports whether a live waiter is queued.
func (q *waitq[T]) ready() bool {
	for _, w := range q.ws {
		if !w.done {
			return true
		}
	}
	return false
}

func (q *waitq[T]) remove(w *waiter[T]) {
	if i := slices.Index(q.ws, w); i >= 0 {
		q.ws = slices.Delete(q.ws, i, i+1)
	}
}

// drain detaches every queued waiter, leaving the queue empty.
func (q *waitq[T]) drain() []*waiter[T] {
	ws := q.ws
	q.ws = nil
	return ws
}

func (q *waitq[T]) len() int {
	return len(q.ws)
}
