package file

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/lis186/smart-tra-mcp-server/internal/logger"
)

//go:embed aliases.toml
var defaultAliasesTOML []byte

// aliasFile mirrors the aliases.toml layout.
type aliasFile struct {
	Aliases map[string]string `toml:"aliases"`
}

// AliasSource serves the curated station alias table. The embedded
// defaults always apply; a user file at <configDir>/aliases.toml is
// merged on top and reloaded live when it changes.
type AliasSource struct {
	path string
}

// NewAliasSource creates an alias source for the given config
// directory. If configDir is empty, defaults to ~/.smart-tra.
func NewAliasSource(configDir string) (*AliasSource, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".smart-tra")
	}
	return &AliasSource{path: filepath.Join(configDir, "aliases.toml")}, nil
}

// Path returns the user override file path.
func (a *AliasSource) Path() string {
	return a.path
}

// Load returns the merged alias table: embedded defaults with user
// overrides applied. A missing user file is not an error.
func (a *AliasSource) Load() (map[string]string, error) {
	var defaults aliasFile
	if err := toml.Unmarshal(defaultAliasesTOML, &defaults); err != nil {
		return nil, err
	}

	merged := make(map[string]string, len(defaults.Aliases))
	for k, v := range defaults.Aliases {
		merged[k] = v
	}

	data, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return merged, nil
		}
		return nil, err
	}

	var overrides aliasFile
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return nil, err
	}
	for k, v := range overrides.Aliases {
		merged[k] = v
	}
	return merged, nil
}

// Watch reloads the alias table whenever the user file changes and
// hands the merged result to onChange. It blocks until ctx is done;
// run it in a goroutine. A malformed edit keeps the previous table.
func (a *AliasSource) Watch(ctx context.Context, onChange func(map[string]string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors typically replace the file, which
	// drops a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(a.path)); err != nil {
		return err
	}

	// Coalesce bursts of events from a single save.
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != a.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(200 * time.Millisecond)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("alias watcher: %v", err)
		case <-pending:
			pending = nil
			aliases, err := a.Load()
			if err != nil {
				logger.Warn("alias reload failed, keeping previous table: %v", err)
				continue
			}
			logger.Info("alias table reloaded: %d entries", len(aliases))
			onChange(aliases)
		}
	}
}
