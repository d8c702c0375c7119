package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern maps paths matching Pattern to Template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

const uuidExpr = `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`

var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/sessions/` + uuidExpr + `$`), Template: "/sessions/{id}"},
	{Pattern: regexp.MustCompile(`^/sessions/` + uuidExpr + `/activity$`), Template: "/sessions/{id}/activity"},
	{Pattern: regexp.MustCompile(`^/sessions/` + uuidExpr + `/activity/pages/[^/]+$`), Template: "/sessions/{id}/activity/pages/{page}"},
}

// staticPaths are served as is.
var staticPaths = map[string]bool{
	"/sessions": true,
	"/health":   true,
	"/ready":    true,
	"/live":     true,
	"/metrics":  true,
}

// unmatched is the label of every path outside the known routes.
const unmatched = "/other"

// NormalizePath returns the route template of path. Query strings and a
// trailing slash are ignored. Unknown paths collapse into one label so
// that scanners cannot grow the label set.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	if staticPaths[path] {
		return path
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return unmatched
}

// GetExpectedCardinality returns the number of distinct labels
// NormalizePath can produce.
func GetExpectedCardinality() int {
	return len(pathPatterns) + len(staticPaths) + 1
}
