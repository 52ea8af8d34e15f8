// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/iox"
)

// Drive runs tasks until none is Ready. It returns nil once no task is
// Blocked either, and a [*DeadlockError] when tasks remain Blocked with no
// open [Source] left to wake them. While a Source is open, Drive waits for
// host callbacks with adaptive backoff (iox.Backoff) instead.
//
// After a deadlock the blocked tasks stay parked: spawning a task that
// can unblock them and calling Drive again continues the run.
func (s *Scheduler) Drive() error {
	return s.drive(nil)
}

// drive is Drive with an optional stop condition checked after each
// segment.
func (s *Scheduler) drive(until func() bool) error {
	if s.current != nil {
		return invalidf("Drive called from running task %d", s.current.id)
	}
	for {
		for s.Tick() {
			if until != nil && until() {
				return nil
			}
		}
		if until != nil && until() {
			return nil
		}
		if s.blocked == 0 {
			return nil
		}
		if s.await() {
			continue
		}
		return s.deadlock()
	}
}

// await waits for host callbacks while every task is blocked. Returns true
// once a callback made progress possible, false when the last open source
// closed without doing so.
func (s *Scheduler) await() bool {
	var bo iox.Backoff
	for {
		ran, open := s.poll()
		if ran > 0 {
			if len(s.runq) > 0 || s.blocked == 0 {
				return true
			}
			bo.Reset()
			continue
		}
		if open == 0 {
			return false
		}
		bo.Wait()
	}
}
