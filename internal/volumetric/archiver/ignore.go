package archiver

import (
	"path/filepath"
	"strings"

	"github.com/denormal/go-gitignore"
	"github.com/spf13/afero"
)

// IgnoreFilename is the name of the file containing user-defined ignore patterns.
const IgnoreFilename = ".volumetricignore"

// defaultIgnorePatterns are always applied.
var defaultIgnorePatterns = []string{
	IgnoreFilename,
}

// matcher decides which entries of a volume are left out of its snapshot.
type matcher struct {
	ignore gitignore.GitIgnore
}

// loadMatcher compiles the default patterns and the volume's ignore file.
func loadMatcher(fs afero.Fs, baseDir string) *matcher {
	rawPatterns := make([]string, len(defaultIgnorePatterns))
	copy(rawPatterns, defaultIgnorePatterns)

	if content, err := afero.ReadFile(fs, filepath.Join(baseDir, IgnoreFilename)); err == nil {
		rawPatterns = append(rawPatterns, strings.Split(string(content), "\n")...)
	}

	var patterns []string
	for _, p := range rawPatterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		patterns = append(patterns, strings.ReplaceAll(trimmed, "\\", "/"))
	}

	ignore := gitignore.New(
		strings.NewReader(strings.Join(patterns, "\n")),
		baseDir,
		// Skip bad patterns and keep parsing.
		func(err gitignore.Error) bool { return true },
	)
	if ignore == nil {
		ignore = gitignore.New(strings.NewReader(""), baseDir, nil)
	}
	return &matcher{ignore: ignore}
}

// Ignored reports whether the slash separated path relative to the volume
// root is excluded.
func (m *matcher) Ignored(rel string, isDir bool) bool {
	match := m.ignore.Relative(rel, isDir)
	if match == nil {
		return false
	}
	return match.Ignore()
}
