// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Reify turns a closure-built task body into a frame chain, the form the
// scheduler steps. Spawn and Run do this on the task's first segment.
func Reify[A any](m kont.Eff[A]) kont.Expr[A] {
	return kont.Reify(m)
}

// Reflect turns a frame-chain task body back into a closure-built one,
// for mixing ExprSendThen-style fragments into Bind and Then pipelines.
func Reflect[A any](m kont.Expr[A]) kont.Eff[A] {
	return kont.Reflect(m)
}

// lazy defers reifying a Cont-world body until its task first runs, so no
// part of it is evaluated at spawn time.
func lazy[R any](work kont.Eff[R]) func() kont.Expr[kont.Erased] {
	return func() kont.Expr[kont.Erased] { return erase(Reify(work)) }
}

// erase retypes a task body to the scheduler's type-erased result.
// Frames already evaluate over Erased, so only the head value converts;
// no map frame is added, and a nil interface result is never asserted.
func erase[R any](m kont.Expr[R]) kont.Expr[kont.Erased] {
	return kont.Expr[kont.Erased]{Value: kont.Erased(m.Value), Frame: m.Frame}
}
