// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"

	"code.hybscloud.com/kont"
)

// Tick runs one task segment: it pops the head of the ready queue and
// evaluates that task until it parks, yields or completes. Host callbacks
// posted through a [Source] run first. Returns false when no task was ready.
//
// Tick is the stepping boundary for hosts that own their own event loop;
// [Scheduler.Drive] calls it until the ready queue is empty.
// Tick panics when called from inside a task.
func (s *Scheduler) Tick() bool {
	if s.current != nil {
		panic(fmt.Sprintf("csp: Tick called from running task %d", s.current.id))
	}
	s.poll()
	for len(s.runq) > 0 {
		id := s.runq[0]
		s.runq[0] = 0
		s.runq = s.runq[1:]
		t, ok := s.tasks[id]
		if !ok || t.state != Ready {
			continue
		}
		s.segment(t)
		return true
	}
	return false
}

// segment evaluates t from its continuation until the next suspension
// point. Operations that complete immediately resume t inside the same
// segment; no other task runs until segment returns.
func (s *Scheduler) segment(t *task) {
	s.current = t
	t.state = Running
	s.metrics.segments.Inc()
	defer func() {
		// Every normal exit clears current; still set means a panic is
		// unwinding out of t.
		if s.current == t {
			s.current = nil
			s.abandon(t)
		}
	}()

	var (
		result kont.Erased
		susp   *kont.Suspension[kont.Erased]
	)
	if t.start != nil {
		body := t.start
		t.start = nil
		result, susp = kont.StepExpr(body())
	} else {
		v := t.resume
		t.resume = nil
		result, susp = t.susp.Resume(v)
		t.susp = nil
	}

	for susp != nil {
		switch op := susp.Op().(type) {
		case taskDispatcher:
			v, ok := op.dispatchTask(s, t)
			if !ok {
				// Parked or requeued: keep the one-shot resumption token.
				t.susp = susp
				if t.state == Blocked {
					t.op = susp.Op()
				}
				s.current = nil
				return
			}
			result, susp = susp.Resume(v)
		case errorDispatcher:
			var ctx kont.ErrorContext[error]
			v, _ := op.DispatchError(&ctx)
			if ctx.HasErr {
				susp.Discard()
				s.current = nil
				s.finish(t, nil, ctx.Err)
				return
			}
			result, susp = susp.Resume(v)
		default:
			panic(fmt.Sprintf("csp: unhandled effect %T in task %d", susp.Op(), t.id))
		}
	}
	s.current = nil
	s.finish(t, result, nil)
}
