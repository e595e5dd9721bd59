package db

import (
	"os"
	"path/filepath"
	"testing"
)

// chdir changes the working directory and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to %s: %v", dir, err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldWd) })
}

func realPath(t *testing.T, p string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		t.Fatalf("EvalSymlinks(%s): %v", p, err)
	}
	return resolved
}

func TestResolveDataDir_EnvHome(t *testing.T) {
	got, err := ResolveDataDir(Env{Home: "/srv/plans"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "/srv/plans" {
		t.Errorf("ResolveDataDir = %q", got)
	}
}

func TestResolveDataDir_SearchesUpward(t *testing.T) {
	root := realPath(t, t.TempDir())
	dataDir := filepath.Join(root, DataDir)
	nested := filepath.Join(root, "a", "b")
	for _, d := range []string{dataDir, nested} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatal(err)
		}
	}
	chdir(t, nested)

	got, err := ResolveDataDir(Env{})
	if err != nil {
		t.Fatalf("ResolveDataDir: %v", err)
	}
	if got != dataDir {
		t.Errorf("ResolveDataDir = %q, want %q", got, dataDir)
	}
}

func TestResolveDataDir_FallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdir(t, t.TempDir())

	got, err := ResolveDataDir(Env{})
	if err != nil {
		t.Fatalf("ResolveDataDir: %v", err)
	}
	if got != filepath.Join(home, DataDir) {
		t.Errorf("ResolveDataDir = %q, want home data dir", got)
	}
}

func TestResolveDataDir_FileInTheWay(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, DataDir), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	chdir(t, root)

	if _, err := ResolveDataDir(Env{}); err == nil {
		t.Error("expected error when .dayplan is a file")
	}
}

func TestDefaultPath(t *testing.T) {
	got, err := DefaultPath(Env{DB: "/tmp/custom.db"})
	if err != nil || got != "/tmp/custom.db" {
		t.Errorf("DefaultPath with DB override = %q, %v", got, err)
	}

	got, err = DefaultPath(Env{Home: "/srv/plans"})
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join("/srv/plans", DBFile) {
		t.Errorf("DefaultPath = %q", got)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("DAYPLAN_HOME", "/srv/plans")
	t.Setenv("DAYPLAN_DB", "/srv/plans/other.db")
	t.Setenv("DAYPLAN_LOG_LEVEL", "debug")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.Home != "/srv/plans" || env.DB != "/srv/plans/other.db" || env.LogLevel != "debug" {
		t.Errorf("LoadEnv = %+v", env)
	}
}

func TestInitPath(t *testing.T) {
	root := realPath(t, t.TempDir())
	chdir(t, root)

	got, err := InitPath()
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(root, DataDir, DBFile) {
		t.Errorf("InitPath = %q", got)
	}
}
