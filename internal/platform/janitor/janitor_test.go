package janitor

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultTTL(t *testing.T) {
	j := New(afero.NewMemMapFs(), "/tmp/tavi_moduli", 0, zerolog.Nop())
	assert.Equal(t, DefaultTTL, j.TTL())
	assert.Equal(t, "/tmp/tavi_moduli", j.Dir())
}

func TestSchedule_RemovesAfterTTL(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/tmp/tavi_moduli/Consenso informato - Rossi Mario.docx"
	require.NoError(t, afero.WriteFile(fsys, path, []byte("x"), 0o644))

	j := New(fsys, "/tmp/tavi_moduli", 20*time.Millisecond, zerolog.Nop())
	j.Schedule(path)

	exists, err := afero.Exists(fsys, path)
	require.NoError(t, err)
	assert.True(t, exists, "file must survive until the TTL elapses")

	assert.Eventually(t, func() bool {
		ok, _ := afero.Exists(fsys, path)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestSchedule_MissingFileIsIgnored(t *testing.T) {
	j := New(afero.NewMemMapFs(), "/tmp", time.Millisecond, zerolog.Nop())
	j.Schedule("/tmp/never-written.pdf")
	time.Sleep(10 * time.Millisecond)
}

func TestSweep_RemovesOnlyExpiredFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "/tmp/tavi_moduli"
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	old := filepath.Join(dir, "Esami ematochimici - Rossi Mario.pdf")
	fresh := filepath.Join(dir, "Consenso informato - Bianchi Anna.docx")
	require.NoError(t, afero.WriteFile(fsys, old, []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, fresh, []byte("x"), 0o644))
	require.NoError(t, fsys.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, fsys.Chtimes(old, now.Add(-11*time.Minute), now.Add(-11*time.Minute)))
	require.NoError(t, fsys.Chtimes(fresh, now.Add(-time.Minute), now.Add(-time.Minute)))
	require.NoError(t, fsys.Chtimes(filepath.Join(dir, "sub"), now.Add(-time.Hour), now.Add(-time.Hour)))

	j := New(fsys, dir, DefaultTTL, zerolog.Nop())
	j.now = func() time.Time { return now }

	assert.Equal(t, 1, j.Sweep())

	ok, _ := afero.Exists(fsys, old)
	assert.False(t, ok)
	ok, _ = afero.Exists(fsys, fresh)
	assert.True(t, ok)
	ok, _ = afero.DirExists(fsys, filepath.Join(dir, "sub"))
	assert.True(t, ok)
}

func TestSweep_OnlyPrefixedFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dir := "/shared"
	now := time.Date(2024, 9, 16, 12, 0, 0, 0, time.UTC)

	form := filepath.Join(dir, "Consenso informato - Rossi Mario.docx")
	other := filepath.Join(dir, "appunti.txt")
	for _, p := range []string{form, other} {
		require.NoError(t, afero.WriteFile(fsys, p, []byte("x"), 0o644))
		require.NoError(t, fsys.Chtimes(p, now.Add(-time.Hour), now.Add(-time.Hour)))
	}

	j := New(fsys, dir, DefaultTTL, zerolog.Nop(), "Consenso informato - ", "Esami ematochimici - ")
	j.now = func() time.Time { return now }

	assert.Equal(t, 1, j.Sweep())

	ok, _ := afero.Exists(fsys, form)
	assert.False(t, ok)
	ok, _ = afero.Exists(fsys, other)
	assert.True(t, ok)
}

func TestSweep_MissingDir(t *testing.T) {
	j := New(afero.NewMemMapFs(), "/does/not/exist", DefaultTTL, zerolog.Nop())
	assert.Equal(t, 0, j.Sweep())
}

func TestStart_StopsWithContext(t *testing.T) {
	j := New(afero.NewMemMapFs(), "/tmp", DefaultTTL, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, j.Start(ctx))
	require.NotNil(t, j.cron)
	assert.Len(t, j.cron.Entries(), 1)
	cancel()
}
