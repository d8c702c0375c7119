package pagination_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-feed/internal/common/pagination"
)

func TestOverscanPolicy_BatchSize(t *testing.T) {
	t.Parallel()

	p := pagination.OverscanPolicy{
		Default:    pagination.Overscan{Normal: 5, Boosted: 10},
		Categories: map[string]pagination.Overscan{"comments": {Normal: 8, Boosted: 20}},
	}

	tests := []struct {
		name     string
		category string
		boosted  bool
		want     int
	}{
		{name: "default normal", category: "written", want: 25},
		{name: "default boosted", category: "written", boosted: true, want: 50},
		{name: "override normal", category: "comments", want: 40},
		{name: "override boosted", category: "comments", boosted: true, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, p.BatchSize(tt.category, 5, tt.boosted))
		})
	}
}

func TestOverscanPolicy_ZeroFactorFetchesOnePerItem(t *testing.T) {
	t.Parallel()

	var p pagination.OverscanPolicy
	assert.Equal(t, 5, p.BatchSize("likes", 5, false))
}

func TestLoadOverscanPolicy(t *testing.T) {
	t.Parallel()

	base := pagination.UniformPolicy(5, 10)
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	t.Run("inherits zero factors", func(t *testing.T) {
		path := write("ok.yaml", "default:\n  boosted: 12\ncategories:\n  likes:\n    normal: 6\n")
		p, err := pagination.LoadOverscanPolicy(path, base)
		require.NoError(t, err)
		assert.Equal(t, pagination.Overscan{Normal: 5, Boosted: 12}, p.Default)
		assert.Equal(t, pagination.Overscan{Normal: 6, Boosted: 12}, p.For("likes"))
	})

	t.Run("rejects boosted below normal", func(t *testing.T) {
		path := write("bad.yaml", "categories:\n  likes:\n    normal: 20\n    boosted: 4\n")
		_, err := pagination.LoadOverscanPolicy(path, base)
		assert.Error(t, err)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		path := write("broken.yaml", "default: [\n")
		_, err := pagination.LoadOverscanPolicy(path, base)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := pagination.LoadOverscanPolicy(filepath.Join(dir, "nope.yaml"), base)
		assert.Error(t, err)
	})
}
