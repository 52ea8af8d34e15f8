// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Run spawns main as the original task of s and drives the scheduler until
// main is Done. Tasks still alive at that point are cancelled and pending
// [After] timers stopped, as a program exit would abandon them. Returns
// main's result and the error it failed with, or a [*DeadlockError] if main
// can never finish.
func Run[R any](s *Scheduler, main kont.Eff[R]) (R, error) {
	return runMain[R](s, lazy(main))
}

// RunExpr is Run for an Expr-world main task.
func RunExpr[R any](s *Scheduler, main kont.Expr[R]) (R, error) {
	body := erase(main)
	return runMain[R](s, func() kont.Expr[kont.Erased] { return body })
}

func runMain[R any](s *Scheduler, main func() kont.Expr[kont.Erased]) (R, error) {
	var zero R
	if s.current != nil {
		return zero, invalidf("Run called from running task %d", s.current.id)
	}
	var (
		result  R
		taskErr error
		done    bool
	)
	s.spawn(main, func(v kont.Erased, err error) {
		done = true
		taskErr = err
		if err == nil {
			result, _ = v.(R)
		}
	})
	if err := s.drive(func() bool { return done }); err != nil {
		return zero, err
	}
	s.cancelAll()
	s.stopTimers()
	return result, taskErr
}
