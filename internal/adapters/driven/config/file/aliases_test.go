package file

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAliasSourceDefaults(t *testing.T) {
	a, err := NewAliasSource(t.TempDir())
	require.NoError(t, err)

	aliases, err := a.Load()
	require.NoError(t, err)
	assert.Equal(t, "臺北", aliases["北車"])
	assert.Equal(t, "花蓮", aliases["花站"])
}

func TestAliasSourceUserOverrides(t *testing.T) {
	dir := t.TempDir()
	a, err := NewAliasSource(dir)
	require.NoError(t, err)

	content := "[aliases]\n\"北車\" = \"板橋\"\n\"左營\" = \"新左營\"\n"
	require.NoError(t, os.WriteFile(a.Path(), []byte(content), 0600))

	aliases, err := a.Load()
	require.NoError(t, err)
	// Override wins, defaults survive, new entries merge in.
	assert.Equal(t, "板橋", aliases["北車"])
	assert.Equal(t, "花蓮", aliases["花站"])
	assert.Equal(t, "新左營", aliases["左營"])
}

func TestAliasSourceMalformedOverride(t *testing.T) {
	dir := t.TempDir()
	a, err := NewAliasSource(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(a.Path(), []byte("not toml ["), 0600))
	_, err = a.Load()
	assert.Error(t, err)
}

func TestAliasSourceWatchReloads(t *testing.T) {
	dir := t.TempDir()
	a, err := NewAliasSource(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan map[string]string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.Watch(ctx, func(aliases map[string]string) { //nolint:errcheck
			select {
			case reloaded <- aliases:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	content := "[aliases]\n\"北車\" = \"板橋\"\n"
	require.NoError(t, os.WriteFile(a.Path(), []byte(content), 0600))

	select {
	case aliases := <-reloaded:
		assert.Equal(t, "板橋", aliases["北車"])
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload aliases")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on context cancel")
	}
}
