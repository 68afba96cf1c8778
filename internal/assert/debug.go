//go:build debug

package assert

// Enabled makes violated preconditions panic.
const Enabled = true
