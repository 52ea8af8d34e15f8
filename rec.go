// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Loop runs an iterative task body (Cont-world), such as a receive loop or
// a generator. step returns Left(nextState) to continue or Right(result)
// to finish. Each channel operation inside step is a suspension point, so
// long-running loops interleave with other tasks.
func Loop[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[A] {
	return kont.Bind(step(initial), func(e kont.Either[S, A]) kont.Eff[A] {
		if next, more := e.GetLeft(); more {
			return Loop(next, step)
		}
		result, _ := e.GetRight()
		return kont.Pure(result)
	})
}

// ExprLoop runs an iterative task body (Expr-world).
// step returns Left(nextState) to continue or Right(result) to finish.
// Iterations that complete without an effect are unrolled in place;
// otherwise the recursion is deferred to a bind frame after the effect.
func ExprLoop[S, A any](initial S, step func(S) kont.Expr[kont.Either[S, A]]) kont.Expr[A] {
	m := step(initial)
	for {
		if _, pure := m.Frame.(kont.ReturnFrame); !pure {
			break
		}
		next, more := m.Value.GetLeft()
		if !more {
			result, _ := m.Value.GetRight()
			return kont.ExprReturn(result)
		}
		m = step(next)
	}
	bf := kont.AcquireBindFrame()
	bf.F = func(a kont.Erased) kont.Expr[kont.Erased] {
		e := a.(kont.Either[S, A])
		if next, more := e.GetLeft(); more {
			result := ExprLoop(next, step)
			return kont.Expr[kont.Erased]{Value: kont.Erased(result.Value), Frame: result.Frame}
		}
		result, _ := e.GetRight()
		return kont.Expr[kont.Erased]{Value: kont.Erased(result), Frame: kont.ReturnFrame{}}
	}
	bf.Next = kont.ReturnFrame{}
	var zero A
	return kont.Expr[A]{
		Value: zero,
		Frame: kont.ChainFrames(m.Frame, bf),
	}
}
