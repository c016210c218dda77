//go:build !debug

package runtime

// Release-build counterparts of debug_assert.go: the RC pass already
// guards these conditions in normal operation, so release builds pay
// nothing for them (spec.md §7: "silently ignored in release").

func debugAssertNotForwarded(obj Object, context string) {}

func debugAssertNoUnderflow(rcWasPositive bool, context string) {}

func debugAssertInSpace(inSpace bool, context string) {}
