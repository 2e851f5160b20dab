package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: t.TempDir()},
		Server: ServerConfig{
			Name:         "Storybook Server",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		AI: AIConfig{
			BaseURL:           DefaultBaseURL,
			Model:             "openai/gpt-4o-mini",
			ImageModel:        "openai/dall-e-3",
			RequestsPerMinute: 20,
		},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.App.Environment = "testing"
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.Logger.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig(t)
	cfg.AI.RequestsPerMinute = 0
	assert.Error(t, cfg.Validate())
}

func TestDemoMode(t *testing.T) {
	assert.True(t, AIConfig{}.DemoMode())
	assert.False(t, AIConfig{APIKey: "sk-test"}.DemoMode())
}

func TestDataPaths(t *testing.T) {
	data := DataConfig{BasePath: "/var/lib/storybook"}
	assert.Equal(t, filepath.Join("/var/lib/storybook", "stories.db"), data.DatabasePath())
	assert.Equal(t, filepath.Join("/var/lib/storybook", "prefs.json"), data.PrefsPath())
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("STORYBOOK_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "STORYBOOK_TEST_KEY", "default"))
	assert.Equal(t, "from-env", getConfigValue("", "STORYBOOK_TEST_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "STORYBOOK_TEST_MISSING", "default"))
}

func TestGetIntConfigValue(t *testing.T) {
	assert.Equal(t, 42, getIntConfigValue("42", "UNUSED", 7))
	assert.Equal(t, 7, getIntConfigValue("", "STORYBOOK_TEST_MISSING_INT", 7))
	assert.Equal(t, 7, getIntConfigValue("not-a-number", "UNUSED", 7))
}

func TestSplitOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, splitOrigins("*"))
	assert.Equal(t,
		[]string{"http://localhost:5173", "https://stories.example.com"},
		splitOrigins(" http://localhost:5173 , https://stories.example.com ,"),
	)
}

func TestExpandPath(t *testing.T) {
	got, err := expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("/absolute/dir", "")
	require.NoError(t, err)
	assert.Equal(t, "/absolute/dir", got)

	got, err = expandPath("~/stories", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
	assert.Contains(t, got, "stories")
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "# comment\nSTORYBOOK_ENVFILE_A=hello\nSTORYBOOK_ENVFILE_B=\"quoted\"\n")

	t.Setenv("STORYBOOK_ENVFILE_A", "")
	t.Setenv("STORYBOOK_ENVFILE_B", "")

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", getConfigValue("", "STORYBOOK_ENVFILE_A", ""))
	assert.Equal(t, "quoted", getConfigValue("", "STORYBOOK_ENVFILE_B", ""))
}

func TestLoadEnvFile_BadLine(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	writeFile(t, envPath, "NOT A VALID LINE\n")

	assert.Error(t, loadEnvFile(envPath))
}
