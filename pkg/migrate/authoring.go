package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const stampLayout = "20060102150405"

var fileNamePattern = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// Scaffold writes an empty goose migration named <stamp>_<slug>.sql into
// dir and returns its path. The slug is the given name lowercased with
// anything outside [a-z0-9_] squashed to underscores.
func Scaffold(dir, name string) (string, error) {
	slug := slugify(name)
	if dir == "" || slug == "" {
		return "", fmt.Errorf("migrate: scaffold needs a directory and a usable name, got dir=%q name=%q", dir, name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("migrate: mkdir %q: %w", dir, err)
	}

	path := filepath.Join(dir, time.Now().UTC().Format(stampLayout)+"_"+slug+".sql")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("migrate: create %q: %w", path, err)
	}
	defer f.Close()

	body := "-- +goose Up\n-- +goose StatementBegin\n-- " + slug +
		"\n-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n-- rollback " + slug +
		"\n-- +goose StatementEnd\n"
	if _, err := f.WriteString(body); err != nil {
		return "", fmt.Errorf("migrate: write %q: %w", path, err)
	}
	return path, nil
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

// Lint checks every .sql file in dir for a well-formed stamped filename, a
// unique stamp, and the goose Up/Down markers. Unlike running goose itself
// it needs no database, so CI can gate on it. All problems are reported in
// one pass rather than stopping at the first.
func Lint(dir string) error {
	if dir == "" {
		return fmt.Errorf("migrate: lint needs a directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("migrate: read dir %q: %w", dir, err)
	}

	var problems []error
	stamps := make(map[string]string)

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := fileNamePattern.FindStringSubmatch(name)
		if m == nil {
			problems = append(problems, fmt.Errorf("%s: filename must be <stamp>_<slug>.sql", name))
			continue
		}
		if prev, dup := stamps[m[1]]; dup {
			problems = append(problems, fmt.Errorf("%s: stamp already used by %s", name, prev))
		}
		stamps[m[1]] = name

		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", name, err))
			continue
		}
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(string(raw), marker) {
				problems = append(problems, fmt.Errorf("%s: missing %q", name, marker))
			}
		}
	}

	return errors.Join(problems...)
}
