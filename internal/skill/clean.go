package skill

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Generated is a skill found under an output root.
type Generated struct {
	Name string
	// Path is the skill directory in nested layout, the file in flat layout.
	Path string
}

// FindGenerated lists the skills under root. Only directories holding a
// SKILL.md and .md files starting with front matter count. A non-empty
// pattern is a glob over skill names. A missing root yields no skills.
func FindGenerated(root, pattern string) ([]Generated, error) {
	var match glob.Glob
	if pattern != "" {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		match = g
	}

	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var found []Generated
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		var name string
		switch {
		case e.IsDir():
			if !isFile(filepath.Join(path, SkillFile)) {
				continue
			}
			name = e.Name()
		case e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".md"):
			if !hasFrontMatter(path) {
				continue
			}
			name = strings.TrimSuffix(e.Name(), ".md")
		default:
			continue
		}
		if match != nil && !match.Match(name) {
			continue
		}
		found = append(found, Generated{Name: name, Path: path})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

// RemoveGenerated deletes the given skills and returns how many were removed.
func RemoveGenerated(skills []Generated) (int, error) {
	removed := 0
	for _, s := range skills {
		if err := os.RemoveAll(s.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", s.Path, err)
		}
		removed++
	}
	return removed, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func hasFrontMatter(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, 4)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return string(head) == "---\n"
}
