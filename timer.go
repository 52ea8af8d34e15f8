// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"time"
)

// After returns a channel that receives the host time once d has elapsed.
//
// The scheduler has no notion of time: After opens a [Source], lets the
// host measure d with time.AfterFunc, and posts one value into a
// capacity-1 channel. Combined with [Select] it expresses a timeout.
//
// A timer still pending when [Run] returns is stopped and its Source
// closed, so it no longer holds off deadlock detection.
func After(s *Scheduler, d time.Duration) *Chan[time.Time] {
	c := MakeChan[time.Time](s, 1)
	src := s.NewSource()
	s.timers[src] = time.AfterFunc(d, func() {
		now := time.Now()
		_ = src.Post(func() {
			delete(s.timers, src)
			_ = c.TrySend(now)
		})
		src.Close()
	})
	return c
}

// stopTimers stops every pending After timer and closes its source.
func (s *Scheduler) stopTimers() {
	for src, t := range s.timers {
		t.Stop()
		src.Close()
	}
	clear(s.timers)
}
