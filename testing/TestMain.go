// Package testing is imported for its side effects by test binaries that link
// the cmd packages. It flags test mode and supplies the required secret.
package testing

import (
	"os"
	stdtesting "testing"
)

func init() {
	setDefault("OFFICEHUB_TEST_MODE", "1")
	setDefault("SESSION_SECRET", "test-session-secret")
	setDefault("DB_AUTO_MIGRATE", "false")
}

func setDefault(key, value string) {
	if _, ok := os.LookupEnv(key); !ok {
		_ = os.Setenv(key, value)
	}
}

// TestMain lets a package delegate its own TestMain here.
func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
