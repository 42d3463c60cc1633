package infra

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

const defaultCheckExecInterval = 5 * time.Second

// MonitorExecutable signals once the running binary is replaced on disk.
// Development runs use it to restart after a rebuild.
func MonitorExecutable(ctx context.Context, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = defaultCheckExecInterval
	}
	entry := log.WithField("object", "ExecutableMonitor")
	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)

		exeFilename, err := os.Executable()
		if err != nil {
			entry.WithField("error", err.Error()).Warn("cant resolve executable path")
			return
		}
		stat, err := os.Stat(exeFilename)
		if err != nil {
			entry.WithField("error", err.Error()).Warn("cant stat executable")
			return
		}
		original := stat.ModTime()
		entry.WithField("path", exeFilename).Debug("watching executable")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stat, err := os.Stat(exeFilename)
				if err != nil {
					continue
				}
				if !original.Equal(stat.ModTime()) {
					entry.Info("executable changed")
					ch <- struct{}{}
					return
				}
			}
		}
	}()
	return ch
}
