// Package assert checks programming-contract preconditions. Builds with the
// debug tag panic on a violated precondition; other builds log it and let the
// caller carry on with its no-op path.
package assert

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Logger receives violations in non-debug builds.
var Logger = logrus.StandardLogger()

// That reports a violation when cond is false. It returns cond so callers can
// bail out with `if !assert.That(...) { return }`.
func That(cond bool, format string, args ...any) bool {
	if cond {
		return true
	}
	msg := fmt.Sprintf(format, args...)
	if Enabled {
		panic("assertion failed: " + msg)
	}
	Logger.WithField("assert", true).Warn(msg)
	return false
}
