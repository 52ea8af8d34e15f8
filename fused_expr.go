// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// Pre-allocated erased values to avoid boxing empty structs into
// kont.Frame/kont.Erased on every Expr-world construction.
var (
	exprReturnFrame kont.Frame  = kont.ReturnFrame{}
	exprYield       kont.Erased = Yield{}
)

// identityResume is the identity resume function for EffectFrame construction.
func identityResume(v kont.Erased) kont.Erased { return v }

// checkThenUnwind continues with the Expr in data when the Either result of
// a send or close is Right, and throws its error otherwise.
func checkThenUnwind[B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	next := data.(kont.Expr[B])
	r := current.(kont.Either[error, struct{}])
	if err, bad := r.GetLeft(); bad {
		thrown := kont.ExprThrowError[error, B](err)
		return kont.Erased(thrown.Value), thrown.Frame
	}
	return kont.Erased(next.Value), next.Frame
}

// exprCheckThen suspends on op and continues with next through checkThenUnwind.
func exprCheckThen[B any](op kont.Operation, next kont.Expr[B]) kont.Expr[B] {
	uf := kont.AcquireUnwindFrame()
	uf.Data1 = next
	uf.Unwind = checkThenUnwind[B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = op
	ef.Resume = identityResume
	ef.Next = uf
	return kont.ExprSuspend[B](ef)
}

// ExprSendThen sends v on c and then continues with next.
// Fuses ExprPerform(Send[T]{Ch: c, Value: v}) + error check + ExprThen.
func ExprSendThen[T, B any](c *Chan[T], v T, next kont.Expr[B]) kont.Expr[B] {
	return exprCheckThen(Send[T]{Ch: c, Value: v}, next)
}

// ExprCloseThen closes c and then continues with next.
func ExprCloseThen[T, B any](c *Chan[T], next kont.Expr[B]) kont.Expr[B] {
	return exprCheckThen(Close[T]{Ch: c}, next)
}

func recvBindUnwind[T, B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(T, bool) kont.Expr[B])
	r := current.(Received[T])
	var result kont.Expr[B]
	if r.Err != nil {
		result = kont.ExprThrowError[error, B](r.Err)
	} else {
		result = f(r.Value, r.OK)
	}
	return kont.Erased(result.Value), result.Frame
}

// ExprRecvBind receives from c and passes the value and the
// received-before-close flag to f.
// Fuses ExprPerform(Recv[T]{Ch: c}) + ExprBind.
func ExprRecvBind[T, B any](c *Chan[T], f func(T, bool) kont.Expr[B]) kont.Expr[B] {
	uf := kont.AcquireUnwindFrame()
	uf.Data1 = f
	uf.Unwind = recvBindUnwind[T, B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Recv[T]{Ch: c}
	ef.Resume = identityResume
	ef.Next = uf
	return kont.ExprSuspend[B](ef)
}

func selectBindUnwind[B any](data, _, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	f := data.(func(Selected) kont.Expr[B])
	result := f(current.(Selected))
	return kont.Erased(result.Value), result.Frame
}

// ExprSelectBind waits on cases and passes the completed case to f.
func ExprSelectBind[B any](cases []Case, hasDefault bool, f func(Selected) kont.Expr[B]) kont.Expr[B] {
	uf := kont.AcquireUnwindFrame()
	uf.Data1 = f
	uf.Unwind = selectBindUnwind[B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Select{Cases: cases, Default: hasDefault}
	ef.Resume = identityResume
	ef.Next = uf
	return kont.ExprSuspend[B](ef)
}

// ExprYieldThen yields to the other ready tasks and then continues with next.
// Fuses ExprPerform(Yield{}) + ExprThen.
func ExprYieldThen[B any](next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = exprYield
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}
