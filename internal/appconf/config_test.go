package appconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFlagToEnvironment(t *testing.T) {
	tests := []struct {
		flag string
		want Environment
	}{
		{"test", Test},
		{"production", Production},
		{"PROD", Production},
		{"development", Development},
		{"staging", Development},
		{"", Development},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			assert.Equal(t, tt.want, EnvFlagToEnvironment(tt.flag))
		})
	}
	assert.Equal(t, "production", Production.String())
}

func TestGetenvDefault(t *testing.T) {
	t.Setenv("PLANNER_TEST_VALUE", "set")
	assert.Equal(t, "set", GetenvDefault("PLANNER_TEST_VALUE", "fallback"))
	assert.Equal(t, "fallback", GetenvDefault("PLANNER_TEST_MISSING", "fallback"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b "))
	assert.Nil(t, SplitList(""))
}

func TestParseProfiles(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		profiles, err := ParseProfiles([]byte(`
profiles:
  - name: pedestrian
    upstream: foot
  - name: wheelchair
    upstream: foot
`))
		require.NoError(t, err)
		assert.Equal(t, []string{"pedestrian", "wheelchair"}, ProfileNames(profiles))
		assert.Equal(t, "foot", UpstreamProfiles(profiles)["wheelchair"])
	})

	t.Run("empty list", func(t *testing.T) {
		_, err := ParseProfiles([]byte("profiles: []\n"))
		assert.Error(t, err)
	})

	t.Run("missing upstream", func(t *testing.T) {
		_, err := ParseProfiles([]byte("profiles:\n  - name: pedestrian\n"))
		assert.ErrorContains(t, err, "Upstream")
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := ParseProfiles([]byte(`
profiles:
  - name: pedestrian
    upstream: foot
  - name: pedestrian
    upstream: walk
`))
		assert.Error(t, err)
	})

	t.Run("names must be usable in descriptors", func(t *testing.T) {
		_, err := ParseProfiles([]byte("profiles:\n  - name: on foot\n    upstream: foot\n"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseProfiles([]byte("profiles: [\n"))
		assert.ErrorContains(t, err, "parsing profiles")
	})
}

func TestLoadProfiles(t *testing.T) {
	t.Run("no path uses defaults", func(t *testing.T) {
		profiles, err := LoadProfiles("")
		require.NoError(t, err)
		assert.Equal(t, "pedestrian", profiles[0].Name)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yaml")
		require.NoError(t, os.WriteFile(path, []byte("profiles:\n  - name: bicycle\n    upstream: bike\n"), 0o600))

		profiles, err := LoadProfiles(path)
		require.NoError(t, err)
		assert.Equal(t, []Profile{{Name: "bicycle", Upstream: "bike"}}, profiles)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfiles(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "reading profiles")
	})
}
