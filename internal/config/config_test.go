package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_db: /data/u.db\nepsilon: 0.01\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/data/u.db", cfg.UserDB)
	require.Equal(t, 0.01, cfg.Epsilon)
	require.Equal(t, Default().ContentDB, cfg.ContentDB)
	require.Equal(t, Default().Profiles, cfg.Profiles)
}

func TestLoadProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	doc := `
profiles:
  - name: drill
    due_share: 0.9
  - name: explore
    due_share: 0.2
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Profiles, 2)
	require.Equal(t, "drill", cfg.Profiles[0].Name)
	require.Equal(t, 0.9, cfg.Profiles[0].DueShare)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("::not yaml::"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
