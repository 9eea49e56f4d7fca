package pipeline

import (
	"testing"

	"go.uber.org/goleak"
)

// Consumers and the coordinator spawn goroutines; every test must leave none behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
