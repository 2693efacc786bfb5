// Package testing forces test mode for packages that blank-import it.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("ORDERDESK_TEST_MODE", "1")
		// Keep tests off any real spreadsheet or model endpoint.
		_ = os.Unsetenv("GEMINI_API_KEY")
		_ = os.Unsetenv("SHEETS_API_KEY")
	})
}

func init() {
	ensureTestMode()
}

// TestMain runs m with test mode enabled.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
