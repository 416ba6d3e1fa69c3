package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// LandingWatcher watches the filesystem lake's raw claims area and fires
// the pipeline trigger when a claim document lands, turning the simulated
// storage trigger into a real one for filesystem-backed lakes.
type LandingWatcher struct {
	lakeRoot string
	trigger  *Trigger
	logger   *zap.Logger
}

// NewLandingWatcher creates a watcher over the lake root directory.
func NewLandingWatcher(lakeRoot string, trigger *Trigger, logger *zap.Logger) *LandingWatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LandingWatcher{lakeRoot: lakeRoot, trigger: trigger, logger: logger}
}

// claimsDir is the watched landing zone under the lake root.
func (w *LandingWatcher) claimsDir() string {
	return filepath.Join(w.lakeRoot, "raw", "claims")
}

// Run watches for new claim.json documents. Blocks until ctx is cancelled.
// Claim documents land one directory per claim, so the watcher also adds
// newly created per-claim directories.
func (w *LandingWatcher) Run(ctx context.Context) error {
	dir := w.claimsDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	// Claim directories created before the watcher started still need
	// watching for late claim.json writes.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			_ = watcher.Add(filepath.Join(dir, entry.Name()))
		}
	}

	w.logger.Info("landing watcher started", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}

			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if event.Has(fsnotify.Create) {
					_ = watcher.Add(event.Name)
				}
				continue
			}

			claimID, ok := w.claimIDFromPath(event.Name)
			if !ok {
				continue
			}
			w.logger.Info("claim document landed",
				zap.String("claimId", claimID),
				zap.String("path", event.Name))
			w.trigger.Schedule(claimID, w.lakeKeyFromPath(event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// claimIDFromPath extracts the claim id from a landed document path of the
// form <root>/raw/claims/<claimId>/claim.json.
func (w *LandingWatcher) claimIDFromPath(path string) (string, bool) {
	if filepath.Base(path) != "claim.json" {
		return "", false
	}
	rel, err := filepath.Rel(w.claimsDir(), path)
	if err != nil {
		return "", false
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", false
	}
	return parts[0], true
}

// lakeKeyFromPath converts an absolute landed path back to its lake key.
func (w *LandingWatcher) lakeKeyFromPath(path string) string {
	rel, err := filepath.Rel(w.lakeRoot, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
