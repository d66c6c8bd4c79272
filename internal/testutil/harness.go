// Package testutil provides shared helpers for integration-style tests:
// a thread-safe log buffer, a temp-dir HCL harness, and small stub modules.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/stackctl/internal/app"
	"github.com/vk/stackctl/internal/hcl"
	"github.com/vk/stackctl/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a harness run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunStack writes the given HCL files into a temp directory, builds an app
// with the provided test modules, and executes the stack end to end. File
// names are relative paths like "stack/deploy.hcl" or
// "modules/noop/manifest.hcl".
func RunStack(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return runStack(context.Background(), t, files, 4, modules...)
}

// RunStackWithContext is RunStack with a caller-provided context.
func RunStackWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return runStack(ctx, t, files, 4, modules...)
}

// RunStackWorkers is RunStack with an explicit worker pool size, for tests
// that depend on serialized scheduling.
func RunStackWorkers(t *testing.T, files map[string]string, workers int, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return runStack(context.Background(), t, files, workers, modules...)
}

func runStack(ctx context.Context, t *testing.T, files map[string]string, workers int, modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	stackDir := filepath.Join(tmpDir, "stack")
	modulesDir := filepath.Join(tmpDir, "modules")
	require.NoError(t, os.Mkdir(stackDir, 0o755))
	require.NoError(t, os.Mkdir(modulesDir, 0o755))

	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	appConfig := &app.AppConfig{
		StackPaths:  []string{stackDir},
		ModulesPath: modulesDir,
		LogLevel:    "debug",
		LogFormat:   "text",
		WorkerCount: workers,
	}

	logBuffer := &SafeBuffer{}

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, hcl.NewLoader(), modules...)
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx, appConfig)

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
