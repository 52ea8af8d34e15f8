// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"errors"
	"fmt"
	"strings"

	"code.hybscloud.com/kont"
)

var (
	// ErrClosedChannelSend is reported to a sender whose channel is closed,
	// whether the close happened before the send or while it was parked.
	ErrClosedChannelSend = errors.New("csp: send on closed channel")

	// ErrDoubleClose is returned when closing an already closed channel.
	ErrDoubleClose = errors.New("csp: close of closed channel")

	// ErrInvalidOperation is returned for operations on an absent channel,
	// a channel owned by another scheduler, or a task that cannot be
	// addressed (unknown, or currently running).
	ErrInvalidOperation = errors.New("csp: invalid operation")

	// ErrCanceled is the error a task finishes with when it is removed by
	// [Scheduler.Cancel].
	ErrCanceled = errors.New("csp: task canceled")

	// ErrDeadlock is matched by every [*DeadlockError].
	ErrDeadlock = errors.New("csp: all tasks are asleep - deadlock")
)

// BlockedTask describes one task parked at the time of a deadlock.
type BlockedTask struct {
	ID TaskID
	Op string
}

// DeadlockError reports that no task is Ready while at least one is Blocked
// and no open [Source] can wake them. Blocked is sorted by task id.
type DeadlockError struct {
	Scheduler Serial
	Blocked   []BlockedTask
}

func (e *DeadlockError) Error() string {
	var b strings.Builder
	b.WriteString(ErrDeadlock.Error())
	fmt.Fprintf(&b, " (%d blocked)", len(e.Blocked))
	for _, t := range e.Blocked {
		fmt.Fprintf(&b, "; task %d: %s", t.ID, t.Op)
	}
	return b.String()
}

// Is reports whether target is ErrDeadlock.
func (e *DeadlockError) Is(target error) bool {
	return target == ErrDeadlock
}

// errorDispatcher is the structural interface of kont error effects
// (Throw, Catch) with error as the error type. A task that throws
// finishes as Done with the thrown error.
type errorDispatcher interface {
	DispatchError(ctx *kont.ErrorContext[error]) (kont.Resumed, bool)
}

// invalidf wraps ErrInvalidOperation with context.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOperation, fmt.Sprintf(format, args...))
}

// sendOK is the pre-boxed Resumed value of a successful send or close.
var sendOK kont.Resumed = kont.Right[error](struct{}{})

// failed boxes err as the Left result of a send or close.
func failed(err error) kont.Resumed {
	return kont.Left[error, struct{}](err)
}

// outcome converts an error into the Either result of a send or close.
func outcome(err error) kont.Resumed {
	if err != nil {
		return failed(err)
	}
	return sendOK
}
