// Package testing provides a widget testing harness for framecore.
//
// # Quick Start
//
// Create a tester, pump a widget, and make assertions:
//
//	func TestMyWidget(t *testing.T) {
//	    tester := fctest.NewWidgetTesterWithT(t)
//	    tester.PumpWidget(widgets.Centered(MyWidget{}))
//
//	    // Find elements
//	    box := tester.Find(fctest.ByType[MyWidget]()).RenderNode()
//	    if box.Size().Width != 100 {
//	        t.Errorf("width = %v", box.Size().Width)
//	    }
//
//	    // Hit test
//	    target, _ := tester.HitTarget(fctest.ByKey("submit"))
//	    _ = target
//	}
//
// # Snapshot Testing
//
// Capture and compare render tree snapshots:
//
//	snapshot := tester.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/my_widget.snapshot.json")
//
// Update snapshots with:
//
//	FRAMECORE_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Pixels
//
// Render composites the last frame into an image:
//
//	img, err := tester.Render()
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import fctest "github.com/go-drift/framecore/pkg/testing"
package testing
