// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// SendThen sends v on c and then continues with next.
// Fuses Perform(Send[T]{Ch: c, Value: v}) + Bind. A failed send throws
// its error, finishing the task unless the error is handled.
func SendThen[T, B any](c *Chan[T], v T, next kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Send[T]{Ch: c, Value: v}), func(r kont.Either[error, struct{}]) kont.Eff[B] {
		if err, bad := r.GetLeft(); bad {
			return kont.ThrowError[error, B](err)
		}
		return next
	})
}

// SendBind sends v on c and passes the outcome to f: nil on delivery,
// ErrClosedChannelSend or ErrInvalidOperation on failure.
func SendBind[T, B any](c *Chan[T], v T, f func(error) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Send[T]{Ch: c, Value: v}), func(r kont.Either[error, struct{}]) kont.Eff[B] {
		err, _ := r.GetLeft()
		return f(err)
	})
}

// RecvBind receives from c and passes the value and the
// received-before-close flag to f. Receiving from an invalid channel
// throws ErrInvalidOperation.
func RecvBind[T, B any](c *Chan[T], f func(T, bool) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Recv[T]{Ch: c}), func(r Received[T]) kont.Eff[B] {
		if r.Err != nil {
			return kont.ThrowError[error, B](r.Err)
		}
		return f(r.Value, r.OK)
	})
}

// CloseThen closes c and then continues with next.
// Closing a closed channel throws ErrDoubleClose.
func CloseThen[T, B any](c *Chan[T], next kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Close[T]{Ch: c}), func(r kont.Either[error, struct{}]) kont.Eff[B] {
		if err, bad := r.GetLeft(); bad {
			return kont.ThrowError[error, B](err)
		}
		return next
	})
}

// SelectBind waits on cases and passes the completed case to f.
// With hasDefault, a select with no ready case completes at once with
// Index DefaultCase.
func SelectBind[B any](cases []Case, hasDefault bool, f func(Selected) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Select{Cases: cases, Default: hasDefault}), f)
}

// YieldThen yields to the other ready tasks and then continues with next.
func YieldThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Yield{}), next)
}

// GoThen spawns work as a new task and continues with next.
func GoThen[R, B any](work kont.Eff[R], next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Go{body: lazy(work)}), next)
}
