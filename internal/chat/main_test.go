package chat

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no goroutines leak across the package tests. Turn
// orchestration must finish or fail synchronously; anything left running
// after a turn is a bug.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
