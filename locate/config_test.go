package locate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	tests := []struct {
		name     string
		content  string
		expected Config
		wantErr  bool
	}{
		{
			name:     "Partial file keeps defaults",
			content:  "mode: package\nbuild_flags: [\"-tags=integration\"]\n",
			expected: Config{Name: "lambdaloc", Mode: ModePackage, BuildFlags: []string{"-tags=integration"}, CacheMaxCost: 64 << 20},
		},
		{
			name:    "Unknown mode",
			content: "mode: workspace\n",
			wantErr: true,
		},
		{
			name:    "Unknown field",
			content: "rules: {}\n",
			wantErr: true,
		},
		{
			name:    "Non positive cache size",
			content: "cache_max_cost: 0\n",
			wantErr: true,
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, filepath.Base(t.Name())+string(rune('a'+i))+".yaml", tt.content)
			config, err := LoadConfig(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, config)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()
	config, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), config)
}

func TestWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)

	config := DefaultConfig()
	config.Mode = ModePackage
	require.NoError(t, WriteConfig(path, config))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config, loaded)

	_, err = New(nil, Config{Mode: "bogus", CacheMaxCost: 1})
	assert.Error(t, err)
}
