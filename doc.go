// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package csp provides CSP-style tasks, channels and select on a single
// driving goroutine, built from algebraic effects on [code.hybscloud.com/kont].
//
// A task body is an effectful computation. Channel operations are effects;
// the [Scheduler] interprets them, parking the task's [kont.Suspension] when
// an operation cannot complete and resuming it when another task satisfies
// the operation. Exactly one task segment runs at a time, so channels and
// the ready queue need no locks.
//
// # Architecture
//
//   - Tasks: [Spawn], [SpawnExpr] and the [Go] effect enqueue Ready tasks. The ready queue is strict FIFO.
//   - Channels: [MakeChan] creates a [Chan] with a fixed capacity. Capacity 0 is a rendezvous; buffers are bounded [code.hybscloud.com/lfq] rings.
//   - Select: [Select] over [SendCase] and [RecvCase] chooses uniformly among ready cases.
//   - Deadlock: [Scheduler.Drive] returns a [*DeadlockError] naming every blocked task and its operation.
//   - Host events: a [Source] lets host goroutines post callbacks; [After] builds timeouts from it.
//
// # API Topologies
//
//   - Operations: [Send], [Recv], [Close], [Select], [Yield], [Go].
//   - Cont-world: [SendThen], [SendBind], [RecvBind], [CloseThen], [SelectBind], [YieldThen], [GoThen].
//   - Expr-world: [ExprSendThen], [ExprRecvBind], [ExprCloseThen], [ExprSelectBind], [ExprYieldThen]. Bridge via [Reify] and [Reflect].
//   - Recursive: [Loop] and [ExprLoop] for trampoline-based iterative task bodies.
//   - Host side: [Chan.TrySend] and [Chan.TryRecv] return [code.hybscloud.com/iox.ErrWouldBlock] instead of blocking; [Chan.Close] closes from outside any task.
//
// # Example
//
//	s := csp.New()
//	ch := csp.MakeChan[string](s, 0)
//	csp.Spawn(s, csp.SendThen(ch, "ping", kont.Pure(struct{}{})))
//	msg, err := csp.Run(s, csp.RecvBind(ch, func(v string, ok bool) kont.Eff[string] {
//		return kont.Pure(v)
//	}))
//	// msg == "ping", err == nil
package csp
