package bridge

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/reglet-dev/portbridge/domain/entities"
)

// settleDelay coalesces the burst of events a single save produces.
const settleDelay = 50 * time.Millisecond

// absResolver resolves paths against the working directory.
type absResolver struct{}

func (absResolver) Resolve(path string) (string, error) {
	return filepath.Abs(path)
}

// watch re-delivers an input each time its file is created or written, until
// ctx ends. Parent directories are watched so replaced files are seen too.
func (b *Bridge) watch(ctx context.Context, report *entities.Report) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	targets := make(map[string]entities.InputBinding, len(b.cfg.inputs))
	dirs := make(map[string]struct{})
	for _, in := range b.cfg.inputs {
		location, err := b.cfg.resolver.Resolve(in.Path)
		if err != nil || strings.Contains(location, "://") {
			b.cfg.logger.WarnContext(ctx, "input cannot be watched", "port", in.Port, "path", in.Path)
			continue
		}
		location = filepath.Clean(location)
		targets[location] = in
		dirs[filepath.Dir(location)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			b.cfg.logger.WarnContext(ctx, "input directory cannot be watched", "dir", dir, "error", err)
		}
	}
	b.cfg.logger.InfoContext(ctx, "watching inputs", "files", len(targets))

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()
	pending := make(map[string]entities.InputBinding)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			in, ok := targets[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			pending[in.Path] = in
			settle.Reset(settleDelay)

		case <-settle.C:
			for path, in := range pending {
				delete(pending, path)
				b.cfg.logger.InfoContext(ctx, "input changed", "port", in.Port, "path", in.Path)
				if err := b.deliver(ctx, in, report); err != nil {
					return err
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			b.cfg.logger.WarnContext(ctx, "watcher error", "error", err)
		}
	}
}
