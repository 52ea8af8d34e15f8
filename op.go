// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"code.hybscloud.com/kont"
)

// taskDispatcher is the structural interface for scheduler effects.
// dispatchTask returns (v, true) when the operation completed inside the
// current segment. It returns (nil, false) after parking or requeueing t;
// the scheduler then resumes t with the value supplied by whoever wakes it.
type taskDispatcher interface {
	dispatchTask(s *Scheduler, t *task) (kont.Resumed, bool)
}

// Send is the effect operation for sending a value of type T on Ch.
// Perform(Send[T]{Ch: ch, Value: v}) resumes with Right on delivery or
// buffering, and Left on failure (closed or invalid channel).
type Send[T any] struct {
	kont.Phantom[kont.Either[error, struct{}]]
	Ch    *Chan[T]
	Value T
}

// dispatchTask hands the value to the oldest waiting receiver, buffers it,
// or parks the sender with its value.
func (op Send[T]) dispatchTask(s *Scheduler, t *task) (kont.Resumed, bool) {
	c := op.Ch
	if err := c.check(s); err != nil {
		return failed(err), true
	}
	done, err := c.trySend(op.Value)
	if err != nil {
		return failed(err), true
	}
	if done {
		return sendOK, true
	}
	s.park(t, parkSend, c.parkSender(t.id, noCase, op.Value))
	return nil, false
}

func (op Send[T]) String() string {
	return "send on " + op.Ch.String()
}

// Received is the result of a [Recv]. OK is false when the channel was
// closed and drained; Value is then the zero value.
type Received[T any] struct {
	Value T
	OK    bool
	Err   error
}

// Recv is the effect operation for receiving a value of type T from Ch.
// Perform(Recv[T]{Ch: ch}) resumes with a [Received].
type Recv[T any] struct {
	kont.Phantom[Received[T]]
	Ch *Chan[T]
}

// dispatchTask takes a buffered value, a waiting sender's value or the
// closed indicator, or parks the receiver.
func (op Recv[T]) dispatchTask(s *Scheduler, t *task) (kont.Resumed, bool) {
	c := op.Ch
	if err := c.check(s); err != nil {
		return Received[T]{Err: err}, true
	}
	if v, ok, done := c.tryRecv(); done {
		return Received[T]{Value: v, OK: ok}, true
	}
	s.park(t, parkRecv, c.parkReceiver(t.id, noCase))
	return nil, false
}

func (op Recv[T]) String() string {
	return "recv on " + op.Ch.String()
}

// Close is the effect operation for closing Ch. Never blocks.
// Perform(Close[T]{Ch: ch}) resumes with Left(ErrDoubleClose) when the
// channel is already closed.
type Close[T any] struct {
	kont.Phantom[kont.Either[error, struct{}]]
	Ch *Chan[T]
}

// dispatchTask closes the channel, waking every parked sender and receiver.
func (op Close[T]) dispatchTask(s *Scheduler, _ *task) (kont.Resumed, bool) {
	if err := op.Ch.check(s); err != nil {
		return failed(err), true
	}
	return outcome(op.Ch.close()), true
}

func (op Close[T]) String() string {
	return "close of " + op.Ch.String()
}

// Yield is the effect operation for giving up the rest of the segment.
// The task goes to the back of the ready queue.
type Yield struct {
	kont.Phantom[struct{}]
}

func (Yield) dispatchTask(s *Scheduler, t *task) (kont.Resumed, bool) {
	s.requeue(t)
	return nil, false
}

func (Yield) String() string {
	return "yield"
}

// Go is the effect operation for spawning a task from inside a task.
// Perform(Go{Work: w}) enqueues w and resumes with its [TaskID] without
// running it. [GoThen] spawns a Cont-world body.
type Go struct {
	kont.Phantom[TaskID]
	Work kont.Expr[kont.Erased]
	body func() kont.Expr[kont.Erased]
}

func (op Go) dispatchTask(s *Scheduler, _ *task) (kont.Resumed, bool) {
	body := op.body
	if body == nil {
		work := op.Work
		body = func() kont.Expr[kont.Erased] { return work }
	}
	return s.spawn(body, nil), true
}

func (Go) String() string {
	return "go"
}
