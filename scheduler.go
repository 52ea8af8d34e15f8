// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"code.hybscloud.com/kont"
	"github.com/sirupsen/logrus"
)

// State is the scheduling state of a task.
type State uint8

const (
	Ready State = iota
	Running
	Blocked
	Done
)

func (st State) String() string {
	switch st {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Done:
		return "done"
	}
	return fmt.Sprintf("State(%d)", uint8(st))
}

// task is the scheduler's record of one task.
// Before its first segment a task holds its body in start, built on the
// first step; afterwards its continuation is the suspension it last
// stopped at.
type task struct {
	id     TaskID
	state  State
	start  func() kont.Expr[kont.Erased]
	susp   *kont.Suspension[kont.Erased]
	resume kont.Resumed   // delivered by the next Resume
	op     kont.Operation // pending operation while Blocked
	parked []registration
	onDone func(kont.Erased, error)
}

// Scheduler runs tasks one segment at a time on the calling goroutine.
// A Scheduler is not safe for concurrent use; only [Source] methods may be
// called from other goroutines.
type Scheduler struct {
	serial  Serial
	tasks   map[TaskID]*task
	runq    []TaskID
	nextID  TaskID
	chans   uint32
	blocked int
	current *task
	rng     *rand.Rand
	log     *logrus.Entry
	metrics *metrics
	inbox   inbox
	timers  map[*Source]*time.Timer // pending After timers
}

// New creates an independent scheduler.
func New(opts ...Option) *Scheduler {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	seed := o.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	s := &Scheduler{
		serial: nextSerial(),
		tasks:  make(map[TaskID]*task),
		timers: make(map[*Source]*time.Timer),
		rng:    rand.New(rand.NewPCG(seed, seed)),
	}
	s.inbox.q.Init(inboxCapacity)
	fields := logrus.Fields{"scheduler": s.serial}
	if o.name != "" {
		fields["name"] = o.name
	}
	s.log = o.logger().WithFields(fields)
	s.metrics = newMetrics(o.registerer, s.serial)
	return s
}

// Serial returns the serial number assigned to this scheduler.
func (s *Scheduler) Serial() Serial {
	return s.serial
}

// Len returns the number of tasks that are not Done.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// State returns the state of task id. Finished and unknown tasks report Done.
func (s *Scheduler) State(id TaskID) State {
	if t, ok := s.tasks[id]; ok {
		return t.state
	}
	return Done
}

// Spawn creates a Ready task running work and returns its id.
// The task is appended to the ready queue; it does not run until the
// scheduler reaches it.
func Spawn[R any](s *Scheduler, work kont.Eff[R]) TaskID {
	return s.spawn(lazy(work), nil)
}

// SpawnExpr is Spawn for an Expr-world task body.
func SpawnExpr[R any](s *Scheduler, work kont.Expr[R]) TaskID {
	body := erase(work)
	return s.spawn(func() kont.Expr[kont.Erased] { return body }, nil)
}

func (s *Scheduler) spawn(body func() kont.Expr[kont.Erased], onDone func(kont.Erased, error)) TaskID {
	s.nextID++
	t := &task{id: s.nextID, state: Ready, start: body, onDone: onDone}
	s.tasks[t.id] = t
	s.runq = append(s.runq, t.id)
	s.metrics.spawned.Inc()
	s.log.WithField("task", t.id).Debug("spawn")
	return t.id
}

// requeue moves the running task t to the back of the ready queue.
func (s *Scheduler) requeue(t *task) {
	t.state = Ready
	t.resume = struct{}{}
	s.runq = append(s.runq, t.id)
}

// parkKind labels park metrics.
type parkKind string

const (
	parkSend   parkKind = "send"
	parkRecv   parkKind = "recv"
	parkSelect parkKind = "select"
)

// park blocks the running task t on the given wait registrations.
func (s *Scheduler) park(t *task, kind parkKind, regs ...registration) {
	t.state = Blocked
	t.parked = append(t.parked[:0], regs...)
	s.blocked++
	s.metrics.blocked.Inc()
	s.metrics.parks.WithLabelValues(string(kind)).Inc()
	s.log.WithFields(logrus.Fields{"task": t.id, "op": kind}).Debug("park")
}

// wake completes the parked operation of task id with v and appends the
// task to the ready queue. All registrations of the task are removed
// before wake returns, so no other channel can complete it again.
func (s *Scheduler) wake(id TaskID, v kont.Resumed) {
	t, ok := s.tasks[id]
	if !ok || t.state != Blocked {
		panic(fmt.Sprintf("csp: wake of task %d that is not blocked", id))
	}
	s.unpark(t)
	t.resume = v
	t.state = Ready
	s.runq = append(s.runq, id)
	s.log.WithField("task", id).Debug("wake")
}

// unpark removes every wait registration of the blocked task t.
func (s *Scheduler) unpark(t *task) {
	for _, r := range t.parked {
		r.deregister()
	}
	clear(t.parked)
	t.parked = t.parked[:0]
	t.op = nil
	s.blocked--
	s.metrics.blocked.Dec()
}

// finish marks t Done and drops it from the task table.
func (s *Scheduler) finish(t *task, result kont.Erased, err error) {
	t.state = Done
	delete(s.tasks, t.id)
	entry := s.log.WithField("task", t.id)
	switch {
	case err == nil:
		entry.Debug("done")
	case errors.Is(err, ErrCanceled):
		entry.Debug("canceled")
	default:
		entry.WithError(err).Warn("task failed")
	}
	if t.onDone != nil {
		t.onDone(result, err)
	}
}

// abandon drops t after a panic escaped its segment. onDone is not called:
// the panic itself reaches the caller of Tick, Drive or Run.
func (s *Scheduler) abandon(t *task) {
	if t.state == Blocked {
		s.unpark(t)
	}
	t.state = Done
	t.susp = nil
	t.resume = nil
	delete(s.tasks, t.id)
	s.log.WithField("task", t.id).Error("task panicked")
}

// Cancel removes task id from the scheduler. A blocked task is first
// deregistered from every wait queue it is parked on, including every
// channel of a pending select. The task finishes with ErrCanceled.
// Cancelling the running task or an unknown task is ErrInvalidOperation.
func (s *Scheduler) Cancel(id TaskID) error {
	t, ok := s.tasks[id]
	if !ok {
		return invalidf("cancel of unknown task %d", id)
	}
	switch t.state {
	case Running:
		return invalidf("cancel of running task %d", id)
	case Blocked:
		s.unpark(t)
	}
	// A Ready task keeps its ready queue slot; Tick skips ids that have
	// left the task table.
	if t.susp != nil {
		t.susp.Discard()
		t.susp = nil
	}
	t.resume = nil
	s.finish(t, nil, ErrCanceled)
	return nil
}

// cancelAll cancels every remaining task in id order.
func (s *Scheduler) cancelAll() {
	ids := make([]TaskID, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		_ = s.Cancel(id)
	}
}

// deadlock builds the report for an all-blocked scheduler and logs it.
func (s *Scheduler) deadlock() error {
	e := &DeadlockError{Scheduler: s.serial}
	for id, t := range s.tasks {
		if t.state == Blocked {
			e.Blocked = append(e.Blocked, BlockedTask{ID: id, Op: describe(t.op)})
		}
	}
	slices.SortFunc(e.Blocked, func(a, b BlockedTask) int {
		return cmp.Compare(a.ID, b.ID)
	})
	s.metrics.deadlocks.Inc()
	for _, b := range e.Blocked {
		s.log.WithFields(logrus.Fields{"task": b.ID, "op": b.Op}).Error("blocked")
	}
	s.log.WithField("blocked", len(e.Blocked)).Error("all tasks are asleep - deadlock")
	return e
}

func describe(op kont.Operation) string {
	if st, ok := op.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", op)
}
