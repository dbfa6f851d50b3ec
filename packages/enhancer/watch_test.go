package enhancer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_EnhancesNewFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "config"), 0o755))

	var (
		mu       sync.Mutex
		enhanced []string
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- newTestEnhancer(root).Watch(ctx, func(r *Result) {
			mu.Lock()
			defer mu.Unlock()
			enhanced = append(enhanced, r.Enhanced...)
		})
	}()

	source := filepath.Join(root, "app", "Models", "Order.php")
	configFile := filepath.Join(root, "config", "queue.php")

	// The watcher may not be registered yet, so keep touching the files until it picks them up.
	touch := func(path, content string) bool {
		data, err := os.ReadFile(path)
		if err == nil && strings.Contains(string(data), Sentinel) {
			return true
		}
		_ = os.MkdirAll(filepath.Dir(path), 0o755)
		_ = os.WriteFile(path, []byte(content), 0o644)
		return false
	}

	require.Eventually(t, func() bool {
		return touch(source, "<?php\nclass Order extends Model {}\n")
	}, 5*time.Second, 50*time.Millisecond)
	require.Eventually(t, func() bool {
		return touch(configFile, "<?php\nreturn [];\n")
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, enhanced, "app/Models/Order.php")
	assert.Contains(t, enhanced, "config/queue.php")

	data, err := os.ReadFile(source)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), Sentinel))
}
