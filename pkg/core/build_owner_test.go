package core

import (
	"container/heap"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-drift/framecore/pkg/errors"
	"github.com/go-drift/framecore/pkg/tree"
)

func TestBuildQueueOrdersByDepthThenSequence(t *testing.T) {
	var q buildQueue
	for i, depth := range []int{3, 1, 2, 1, 0} {
		heap.Push(&q, &buildEntry{id: tree.ID(i + 1), depth: depth, seq: uint64(i)})
	}
	var got []tree.ID
	for q.Len() > 0 {
		got = append(got, heap.Pop(&q).(*buildEntry).id)
	}
	if want := []tree.ID{5, 2, 4, 3, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("pop order = %v, want %v", got, want)
	}
}

func TestFlushBuildIsDepthOrdered(t *testing.T) {
	h := newHarness()
	var log []string
	h.pump(column{children: []Widget{
		tracer{name: "shallow", log: &log, child: leaf{w: 1, h: 1}},
		wrap{child: wrap{child: tracer{name: "deep", log: &log, child: leaf{w: 1, h: 1}}}},
	}})
	log = nil
	deep, shallow := h.named("deep"), h.named("shallow")

	h.owner.ScheduleBuildFor(deep.ID(), deep.Depth())
	h.owner.ScheduleBuildFor(shallow.ID(), shallow.Depth())
	h.frame()

	if want := []string{"shallow", "deep"}; !reflect.DeepEqual(log, want) {
		t.Errorf("rebuild order = %v, want %v", log, want)
	}
}

func TestScheduleDuringFlushJoinsSameFlush(t *testing.T) {
	h := newHarness()
	var log []string
	var deep *Element
	trigger := false
	h.pump(column{children: []Widget{
		Builder{Fn: func(BuildContext) Widget {
			log = append(log, "first")
			if trigger {
				h.owner.ScheduleBuildFor(deep.ID(), deep.Depth())
			}
			return leaf{w: 1, h: 1}
		}},
		wrap{child: tracer{name: "deep", log: &log, child: leaf{w: 1, h: 1}}},
	}})
	deep = h.named("deep")
	first := h.find(func(w Widget) bool { _, ok := w.(Builder); return ok })
	log, trigger = nil, true

	first.MarkNeedsBuild()
	h.frame()
	if want := []string{"first", "deep"}; !reflect.DeepEqual(log, want) {
		t.Errorf("log = %v, want %v", log, want)
	}
	if h.owner.HasPending() {
		t.Error("request left pending after the flush")
	}
}

func TestScheduleIsDeduplicated(t *testing.T) {
	h := newHarness()
	h.pump(tracer{name: "p", child: leaf{w: 1, h: 1}})
	p := h.named("p")
	h.owner.ResetStats()

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.owner.ScheduleBuildFor(p.ID(), p.Depth())
		}()
	}
	wg.Wait()
	if got := h.owner.Stats().Scheduled; got != 1 {
		t.Errorf("scheduled = %d, want 1", got)
	}
	h.frame()
	if got := h.owner.Stats().Rebuilt; got != 1 {
		t.Errorf("rebuilt = %d, want 1", got)
	}
}

func TestNestedBuildScopePanics(t *testing.T) {
	owner := NewBuildOwner()
	expectViolation(t, errors.KindLifecycle, func() {
		owner.BuildScope(func() {
			owner.BuildScope(func() {})
		})
	})
	if owner.State() != StateIdle {
		t.Errorf("state = %s after nested scope", owner.State())
	}
}

func TestFlushAndFinalizeRequireTheirStates(t *testing.T) {
	owner := NewBuildOwner()
	expectViolation(t, errors.KindLifecycle, owner.FlushBuild)
	expectViolation(t, errors.KindLifecycle, owner.FinalizeTree)
	expectViolation(t, errors.KindLifecycle, func() {
		owner.BuildScope(owner.FinalizeTree)
	})
	expectViolation(t, errors.KindLifecycle, func() {
		NewElementTree(owner, nil).SetRoot(leaf{})
	})
}

func TestScheduleWhileLockedIsQueued(t *testing.T) {
	h := newHarness()
	var log []string
	h.pump(tracer{name: "p", log: &log, child: leaf{w: 1, h: 1}})
	p := h.named("p")
	log = nil

	var notified atomic.Int32
	h.owner.OnBuildScheduled(func() { notified.Add(1) })
	h.owner.LockState(func() {
		h.owner.ScheduleBuildFor(p.ID(), p.Depth())
		if h.owner.State() != StateLocked {
			t.Errorf("state = %s", h.owner.State())
		}
		if notified.Load() != 0 {
			t.Error("notified while locked")
		}
	})
	if notified.Load() != 1 {
		t.Errorf("notifications after unlock = %d, want 1", notified.Load())
	}
	if !h.owner.HasPending() {
		t.Fatal("queued request lost")
	}
	h.frame()
	if !reflect.DeepEqual(log, []string{"p"}) {
		t.Errorf("log = %v", log)
	}
}

func TestStaleRequestsForDestroyedElementsAreDropped(t *testing.T) {
	h := newHarness()
	root := h.pump(wrap{child: leaf{w: 1, h: 1}})
	old := h.elements.ChildIDs(root)[0]

	h.owner.BuildScope(func() {
		h.elements.SetRoot(wrap{child: counter{}})
		h.owner.FlushBuild()
	})
	h.owner.LockState(func() {
		h.owner.ScheduleBuildFor(old, 1)
		h.owner.FinalizeTree()
	})
	if h.owner.HasPending() {
		t.Error("request for a destroyed element survived finalize")
	}
}

func TestOnBuildScheduledFiresOnEmptyToNonEmpty(t *testing.T) {
	h := newHarness()
	h.pump(column{children: []Widget{tracer{name: "a"}, tracer{name: "b"}}})
	var notified int
	h.owner.OnBuildScheduled(func() { notified++ })

	h.named("a").MarkNeedsBuild()
	h.named("b").MarkNeedsBuild()
	if notified != 1 {
		t.Errorf("notified = %d, want 1", notified)
	}
	h.frame()
	h.named("a").MarkNeedsBuild()
	if notified != 2 {
		t.Errorf("notified = %d, want 2", notified)
	}
}

func TestBatchWindowCoalescesNotifications(t *testing.T) {
	owner := NewBuildOwner()
	fired := make(chan struct{}, 8)
	owner.OnBuildScheduled(func() { fired <- struct{}{} })
	owner.SetBatchWindow(20 * time.Millisecond)

	owner.ScheduleBuildFor(1, 0)
	owner.retry(2, 0)
	owner.retry(3, 0)

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("batched notification never fired")
	}
	select {
	case <-fired:
		t.Error("notifications were not coalesced")
	case <-time.After(60 * time.Millisecond):
	}
}
