package navfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/radovskyb/watcher"
)

// DefaultWatchInterval is how often Watch polls the directory.
const DefaultWatchInterval = time.Second

// Watch auto-processes dir once and then again whenever one of the well-known
// input files is created or rewritten, until ctx is cancelled. Failures of
// individual runs are logged and do not stop the watch.
func (p *Processor) Watch(ctx context.Context, dir string, interval time.Duration) error {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}
	if interval <= 0 {
		interval = DefaultWatchInterval
	}

	w := watcher.New()
	w.FilterOps(watcher.Create, watcher.Write)
	w.AddFilterHook(func(info os.FileInfo, fullPath string) error {
		if _, ok := OutputName(info.Name()); ok && !info.IsDir() {
			return nil
		}
		return watcher.ErrSkip
	})
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	if _, err := p.AutoProcess(ctx, dir); err != nil {
		p.log.Error().Err(err).Msg("Operation failed")
	}

	go func() {
		if err := w.Start(interval); err != nil {
			p.log.Error().Err(err).Msg("failed to start watcher")
		}
	}()
	w.Wait()

	p.log.Info().Str("directory", dir).Dur("interval", interval).Msg("Watching for files to process")

	for {
		select {
		case <-ctx.Done():
			stopWatcher(w)
			p.log.Info().Msg("Watch stopped")
			return nil
		case event := <-w.Event:
			if event.IsDir() {
				continue
			}
			name := filepath.Base(event.Path)
			p.log.Debug().Str("file", name).Str("op", event.Op.String()).Msg("file changed")
			if err := p.processWellKnown(ctx, dir, name); err != nil {
				p.log.Error().Err(err).Msg("Operation failed")
			}
		case err := <-w.Error:
			p.log.Error().Err(err).Msg("error while watching directory")
		case <-w.Closed:
			return nil
		}
	}
}

// stopWatcher closes w while draining the channels its polling loop may be
// blocked on.
func stopWatcher(w *watcher.Watcher) {
	go w.Close()
	for {
		select {
		case <-w.Event:
		case <-w.Error:
		case <-w.Closed:
			return
		}
	}
}
