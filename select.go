// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"strings"

	"code.hybscloud.com/kont"
)

// DefaultCase is the Selected index reported when the default branch ran.
const DefaultCase = -1

// Selected is the result of a [Select].
// Index is the position of the case that completed, or DefaultCase.
// For a receive case Value holds the received value (the zero value of
// the element type when the channel was closed) and OK is false on close.
// For a send case OK reports delivery and Err holds ErrClosedChannelSend
// when the channel was closed.
type Selected struct {
	Index int
	Value any
	OK    bool
	Err   error
}

// ValueOf returns sel.Value as T, or the zero value of T.
func ValueOf[T any](sel Selected) T {
	v, _ := sel.Value.(T)
	return v
}

// Case is one candidate operation of a [Select].
// Build cases with [SendCase] and [RecvCase]. Cases on a nil channel are
// never ready, as in Go.
type Case interface {
	owner() *Scheduler
	// ready reports whether the case would complete without blocking.
	ready() bool
	// commit runs a ready case.
	commit() Selected
	register(id TaskID, index int) registration
	String() string
}

type sendCase[T any] struct {
	c *Chan[T]
	v T
}

// SendCase returns a select case sending v on c.
func SendCase[T any](c *Chan[T], v T) Case {
	return sendCase[T]{c: c, v: v}
}

func (k sendCase[T]) owner() *Scheduler {
	if k.c == nil {
		return nil
	}
	return k.c.s
}

// A send on a closed channel is ready: it completes with an error.
func (k sendCase[T]) ready() bool {
	return k.c.closed || k.c.recvq.ready() || k.c.n < k.c.cap
}

func (k sendCase[T]) commit() Selected {
	_, err := k.c.trySend(k.v)
	return Selected{OK: err == nil, Err: err}
}

func (k sendCase[T]) register(id TaskID, index int) registration {
	return k.c.parkSender(id, index, k.v)
}

func (k sendCase[T]) String() string {
	return "send on " + k.c.String()
}

type recvCase[T any] struct {
	c *Chan[T]
}

// RecvCase returns a select case receiving from c.
func RecvCase[T any](c *Chan[T]) Case {
	return recvCase[T]{c: c}
}

func (k recvCase[T]) owner() *Scheduler {
	if k.c == nil {
		return nil
	}
	return k.c.s
}

func (k recvCase[T]) ready() bool {
	return k.c.n > 0 || k.c.sendq.ready() || k.c.closed
}

func (k recvCase[T]) commit() Selected {
	v, ok, _ := k.c.tryRecv()
	return Selected{Value: v, OK: ok}
}

func (k recvCase[T]) register(id TaskID, index int) registration {
	return k.c.parkReceiver(id, index)
}

func (k recvCase[T]) String() string {
	return "recv on " + k.c.String()
}

// Select is the effect operation for waiting on several channel operations.
// Perform(Select{Cases: cs, Default: d}) resumes with a [Selected].
type Select struct {
	kont.Phantom[Selected]
	Cases   []Case
	Default bool
}

// dispatchTask evaluates every case for readiness before committing to
// one. Among several ready cases the choice is uniform. With none ready
// and no default, the task is registered on every case channel; the first
// case to complete wakes it and the wake removes all other registrations.
func (op Select) dispatchTask(s *Scheduler, t *task) (kont.Resumed, bool) {
	var ready []int
	for i, k := range op.Cases {
		if k == nil {
			continue
		}
		switch o := k.owner(); {
		case o == nil:
			continue
		case o != s:
			return Selected{Index: i, Err: invalidf("select %s from scheduler %d", k, s.serial)}, true
		}
		if k.ready() {
			ready = append(ready, i)
		}
	}
	if len(ready) > 0 {
		i := ready[0]
		if len(ready) > 1 {
			i = ready[s.rng.IntN(len(ready))]
		}
		sel := op.Cases[i].commit()
		sel.Index = i
		return sel, true
	}
	if op.Default {
		return Selected{Index: DefaultCase}, true
	}

	regs := make([]registration, 0, len(op.Cases))
	for i, k := range op.Cases {
		if k == nil || k.owner() == nil {
			continue
		}
		regs = append(regs, k.register(t.id, i))
	}
	s.park(t, parkSelect, regs...)
	return nil, false
}

func (op Select) String() string {
	var b strings.Builder
	b.WriteString("select [")
	for i, k := range op.Cases {
		if i > 0 {
			b.WriteString(", ")
		}
		if k == nil {
			b.WriteString("<nil>")
			continue
		}
		b.WriteString(k.String())
	}
	if op.Default {
		if len(op.Cases) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("default")
	}
	b.WriteString("]")
	return b.String()
}
