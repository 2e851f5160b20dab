package prefs

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storybookapp/storybook-server/internal/domain"
)

func TestNew_CreatesFileWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := New(path, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, domain.ThemeDark, s.Get().Theme)
	assert.Empty(t, s.Get().APIKey)

	_, err = os.Stat(path)
	assert.NoError(t, err, "file is created eagerly")
}

func TestNew_LoadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"flash-era-light","api_key":"sk-test"}`), 0o600))

	s, err := New(path, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, domain.ThemeLight, s.Get().Theme)
	assert.Equal(t, "sk-test", s.Get().APIKey)
}

func TestNew_UnknownThemeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"neon"}`), 0o600))

	s, err := New(path, nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, domain.ThemeDark, s.Get().Theme)
}

func TestSetTheme_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := New(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.SetTheme(domain.ThemeLight))
	require.NoError(t, s.Close())

	reopened, err := New(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, domain.ThemeLight, reopened.Get().Theme)
}

func TestSetTheme_RejectsUnknown(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "prefs.json"), nil)
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.SetTheme(domain.Theme("neon")))
	assert.Equal(t, domain.ThemeDark, s.Get().Theme)
}

func TestOnChange_FiresForSetters(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "prefs.json"), nil)
	require.NoError(t, err)
	defer s.Close()

	var mu sync.Mutex
	var seen []Prefs
	s.OnChange(func(p Prefs) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})

	require.NoError(t, s.SetAPIKey("sk-new"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1)
	assert.Equal(t, "sk-new", seen[0].APIKey)
}

func TestWatch_ReloadsOnExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	s, err := New(path, nil)
	require.NoError(t, err)
	defer s.Close()

	changed := make(chan Prefs, 1)
	s.OnChange(func(p Prefs) {
		select {
		case changed <- p:
		default:
		}
	})
	require.NoError(t, s.Watch())

	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"flash-era-light"}`), 0o600))

	select {
	case p := <-changed:
		assert.Equal(t, domain.ThemeLight, p.Theme)
	case <-time.After(3 * time.Second):
		t.Fatal("external edit was not picked up")
	}
	assert.Equal(t, domain.ThemeLight, s.Get().Theme)
}
