package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sid = "3f2b8c1e-6a47-4d0b-9c55-1e2a3b4c5d6e"

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/sessions", want: "/sessions"},
		{path: "/sessions/", want: "/sessions"},
		{path: "/sessions/" + sid, want: "/sessions/{id}"},
		{path: "/sessions/" + sid + "/activity", want: "/sessions/{id}/activity"},
		{path: "/sessions/" + sid + "/activity?x=1", want: "/sessions/{id}/activity"},
		{path: "/sessions/" + sid + "/activity/pages/3", want: "/sessions/{id}/activity/pages/{page}"},
		{path: "/health", want: "/health"},
		{path: "/metrics", want: "/metrics"},
		{path: "/sessions/not-a-uuid", want: "/other"},
		{path: "/wp-admin/install.php", want: "/other"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.path))
		})
	}
}

func TestNormalizePath_BoundedCardinality(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range []string{
		"/sessions/" + sid, "/sessions/" + sid + "/activity",
		"/a", "/b", "/c/d", "/health", "/sessions",
	} {
		seen[NormalizePath(p)] = true
	}
	assert.LessOrEqual(t, len(seen), GetExpectedCardinality())
}
