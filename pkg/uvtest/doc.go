// Package uvtest provides test doubles for upf packages.
//
// # Time
//
// FakeClock satisfies animation.TimeSource so storyboards advance
// deterministically:
//
//	clk := uvtest.NewFakeClock()
//	clock := animation.NewClock()
//	clock.SetTimeSource(clk)
//	clock.Step()
//	clk.Advance(100 * time.Millisecond)
//	clock.Step()
//
// # Diagnostics
//
// RecordingHandler captures everything routed through the errors package:
//
//	h := uvtest.InstallHandler(t)
//	presenter.Update(0)
//	if len(h.Errors()) != 0 {
//	    t.Errorf("unexpected errors: %v", h.Errors())
//	}
//
// # Finding elements
//
// Finders locate elements in a tree by type, name, class or text:
//
//	ok := uvtest.Find(root, uvtest.ByText("OK")).First()
package uvtest
