// Package prof re-exports util.Prof.Enter/Exit under a short local name
// so call sites read as: e := prof.Enter("document.replace"); defer e.Exit().
package prof

import "github.com/limetext/util"

// Enter starts a named profiling span. The returned handle's Exit must be
// called exactly once, typically via defer, to close the span.
func Enter(name string) interface {
	Exit()
} {
	return util.Prof.Enter(name)
}
