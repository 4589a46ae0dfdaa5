// Package core turns descriptions into a persistent element tree.
//
// A [Widget] is an immutable description. Mounting one creates an
// [Element] in an [ElementTree]; the element keeps its [tree.ID] for as long
// as later descriptions can update it in place (same kind, same declared
// type, equal keys). The variant of the element follows the kind of the
// description: composition, stateful, provider, render or parent-data.
//
// # Rebuilds
//
// Elements are rebuilt by a [BuildOwner]. Requests are collected with
// [BuildOwner.ScheduleBuildFor] (from any goroutine) or
// [Element.MarkNeedsBuild], and flushed shallowest first:
//
//	owner.BuildScope(func() {
//	    elements.SetRoot(app)
//	    owner.FlushBuild()
//	})
//	owner.LockState(owner.FinalizeTree)
//
// Elements replaced during a build stay in the arena until FinalizeTree, so
// no id is recycled while a pending request or a render node still
// refers to it.
//
// # Stateful Widgets
//
// For widgets that need mutable state, embed StateBase in your state struct:
//
//	type counterState struct {
//	    core.StateBase
//	    count *core.Managed[int]
//	}
//
//	func (s *counterState) InitState() {
//	    s.count = core.NewManaged(s, 0)
//	}
//
// # Failures
//
// A panic in Build is isolated to the element: it is reported through
// errors.ReportBoundaryError, the subtree is replaced by the widget from
// [SetErrorWidgetBuilder] (or [ErrorPlaceholder]) and the element is
// rebuilt again on the next flush. Broken invariants panic with
// *errors.InvariantError and are never recovered.
package core
