package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScaffoldProducesLintCleanFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path, err := Scaffold(dir, "Add Orders Index!")
	if err != nil {
		t.Fatalf("scaffold: %v", err)
	}

	base := filepath.Base(path)
	if !strings.HasSuffix(base, "_add_orders_index.sql") {
		t.Fatalf("unexpected filename %q", base)
	}
	if err := Lint(dir); err != nil {
		t.Fatalf("fresh scaffold should lint clean: %v", err)
	}
}

func TestScaffoldRejectsUnusableName(t *testing.T) {
	t.Parallel()

	if _, err := Scaffold(t.TempDir(), "!!!"); err == nil {
		t.Fatal("expected error for name with no usable characters")
	}
}

func TestLintReportsEveryProblem(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	write("badname.sql", "-- +goose Up\n-- +goose Down\n")
	write("20240101000000_first.sql", "-- +goose Up\n")
	write("20240101000000_second.sql", "-- +goose Up\n-- +goose Down\n")

	err := Lint(dir)
	if err == nil {
		t.Fatal("expected lint failures")
	}
	for _, want := range []string{
		"badname.sql",
		`missing "-- +goose Down"`,
		"stamp already used",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("lint error missing %q:\n%v", want, err)
		}
	}
}

func TestLintIgnoresNonSQLFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Lint(dir); err != nil {
		t.Fatalf("non-sql files should not fail lint: %v", err)
	}
}
