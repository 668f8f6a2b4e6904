package app

import (
	"bytes"
	"os"
	"testing"

	"github.com/specialistvlad/robogrid/internal/config"
	"github.com/specialistvlad/robogrid/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Output is
// captured in the returned buffer, debug logs in the SafeBuffer. The
// extensions directory defaults to an empty temporary directory.
func SetupAppTest(t *testing.T, cfg config.Config, opts ...Option) (*App, *bytes.Buffer, *testutil.SafeBuffer) {
	t.Helper()

	if cfg.ExtensionsDir == config.Default().ExtensionsDir {
		cfg.ExtensionsDir = t.TempDir()
	}
	cfg.LogLevel = "debug"

	out := &bytes.Buffer{}
	logBuffer := &testutil.SafeBuffer{}
	testApp, err := NewApp(out, logBuffer, cfg, opts...)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	t.Cleanup(func() {
		if os.Getenv("ROBOGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, out, logBuffer
}
