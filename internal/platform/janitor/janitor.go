// Package janitor removes ephemeral files (printable forms copied for a single
// use) once they are no longer needed. Removal is best effort: failures are
// logged and otherwise ignored.
package janitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultTTL is how long an ephemeral file is kept.
const DefaultTTL = 10 * time.Minute

const sweepSpec = "@every 1m"

// Janitor deletes files from an ephemeral directory after a fixed TTL.
type Janitor struct {
	fs       afero.Fs
	dir      string
	ttl      time.Duration
	prefixes []string
	logger   zerolog.Logger
	now      func() time.Time
	cron     *cron.Cron
}

// New returns a Janitor for dir. A non-positive ttl means DefaultTTL. When
// prefixes are given, Sweep only considers files whose names start with one
// of them, so dir may be shared with other files.
func New(fsys afero.Fs, dir string, ttl time.Duration, logger zerolog.Logger, prefixes ...string) *Janitor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Janitor{
		fs:       fsys,
		dir:      dir,
		ttl:      ttl,
		prefixes: prefixes,
		logger:   logger.With().Str("component", "janitor").Logger(),
		now:      time.Now,
	}
}

// Dir returns the directory the janitor sweeps.
func (j *Janitor) Dir() string { return j.dir }

// TTL returns the retention period.
func (j *Janitor) TTL() time.Duration { return j.ttl }

// Schedule arranges for path to be removed once the TTL elapses. It returns
// immediately.
func (j *Janitor) Schedule(path string) {
	time.AfterFunc(j.ttl, func() {
		j.remove(path)
	})
}

// Start runs a periodic sweep of the directory until ctx is cancelled, picking
// up files whose timers were lost, e.g. those written by a CLI invocation that
// has since exited.
func (j *Janitor) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(sweepSpec, func() { j.Sweep() }); err != nil {
		return fmt.Errorf("scheduling sweep: %w", err)
	}
	j.cron = c
	c.Start()

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

// Sweep removes the regular files in the directory that are older than the
// TTL and match the janitor's prefixes, and returns how many were removed.
func (j *Janitor) Sweep() int {
	entries, err := afero.ReadDir(j.fs, j.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			j.logger.Debug().Err(err).Str("dir", j.dir).Msg("sweep: read dir")
		}
		return 0
	}

	cutoff := j.now().Add(-j.ttl)
	removed := 0
	for _, e := range entries {
		if e.IsDir() || e.ModTime().After(cutoff) || !j.owns(e.Name()) {
			continue
		}
		if j.remove(filepath.Join(j.dir, e.Name())) {
			removed++
		}
	}
	return removed
}

func (j *Janitor) owns(name string) bool {
	if len(j.prefixes) == 0 {
		return true
	}
	for _, p := range j.prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

func (j *Janitor) remove(path string) bool {
	if err := j.fs.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			j.logger.Debug().Err(err).Str("path", path).Msg("remove ephemeral file")
		}
		return false
	}
	j.logger.Debug().Str("path", path).Msg("ephemeral file removed")
	return true
}
