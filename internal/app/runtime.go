package app

import (
	"os"
	"strconv"
)

// TestModeEnv is set by the testing package so binaries linked into a test
// run do not open pools or listeners.
const TestModeEnv = "OFFICEHUB_TEST_MODE"

// InTestMode reports whether OFFICEHUB_TEST_MODE holds a true value.
func InTestMode() bool {
	on, err := strconv.ParseBool(os.Getenv(TestModeEnv))
	return err == nil && on
}
