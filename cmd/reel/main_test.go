package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/media"
	"github.com/pders01/reel/internal/storage"
)

const sampleVideos = `{"videos": [
 {"id": 1, "userID": 10, "username": "ana", "profilePicURL": "https://cdn.reel.dev/a.png", "description": "street food tour", "topic": "food", "viewers": 5, "likes": 1, "video": "https://cdn.reel.dev/1.mp4", "thumbnail": "https://cdn.reel.dev/1.jpg"}
]}`

const sampleComments = `{"comments": []}`

// execute runs the root command with args against a scratch HOME.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	flags = rootFlags{}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "videos.json"), []byte(sampleVideos), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "comments.json"), []byte(sampleComments), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	for _, want := range []string{"reel dev", "Short-video feed player", "github.com/pders01/reel"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected version output to contain %q, got: %s", want, out)
		}
	}
}

func TestConfigGenerateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "config", "generate", path)
	if err != nil {
		t.Fatalf("config generate failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("expected output to name %s, got: %s", path, out)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if cfg.Source.Kind != config.SourceFixture {
		t.Errorf("Source.Kind = %q, want fixture", cfg.Source.Kind)
	}
}

func TestListCommandFixturesDir(t *testing.T) {
	dir := writeFixtures(t)
	db := filepath.Join(t.TempDir(), "reel.db")

	out, err := execute(t, "list", "--fixtures", dir, "--db", db)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "@ana") || !strings.Contains(out, "street food tour") {
		t.Errorf("expected the fixture video in output, got: %s", out)
	}
}

func TestListCommandEmbeddedFixtures(t *testing.T) {
	db := filepath.Join(t.TempDir(), "reel.db")

	out, err := execute(t, "list", "--db", db)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "@blender_studio") {
		t.Errorf("expected embedded sample feed, got: %s", out)
	}
}

func TestListCommandMissingFixtures(t *testing.T) {
	db := filepath.Join(t.TempDir(), "reel.db")

	_, err := execute(t, "list", "--fixtures", t.TempDir(), "--db", db)
	if err == nil || !strings.Contains(err.Error(), "has no videos") {
		t.Fatalf("expected a not-found error, got %v", err)
	}
}

func TestUnknownSourceRejected(t *testing.T) {
	_, err := execute(t, "list", "--source", "carrier-pigeon")
	if err == nil || !strings.Contains(err.Error(), "unknown source kind") {
		t.Fatalf("expected unknown source error, got %v", err)
	}
}

func TestHistoryCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "reel.db")

	out, err := execute(t, "history", "--db", db)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "Nothing watched yet") {
		t.Errorf("expected empty history, got: %s", out)
	}

	store, err := storage.NewStore(db, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.RecordWatch(&storage.Video{ID: 7, Username: "ana", Video: "https://cdn.reel.dev/7.mp4"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	out, err = execute(t, "history", "--db", db, "-n", "5")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "@ana") || !strings.Contains(out, "7.mp4") {
		t.Errorf("expected recorded watch in output, got: %s", out)
	}
}

func TestCacheClearCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "reel.db")

	store, err := storage.NewStore(db, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SavePage("http:https://api.reel.dev", "", &storage.Page{Videos: []*storage.Video{{ID: 1}}}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	out, err := execute(t, "cache", "clear", "--db", db)
	if err != nil {
		t.Fatalf("cache clear failed: %v", err)
	}
	if !strings.Contains(out, "Cache cleared") {
		t.Errorf("unexpected output: %s", out)
	}

	store, err = storage.NewStore(db, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.GetPage("http:https://api.reel.dev", ""); err == nil {
		t.Error("cached page survived cache clear")
	}
}

func TestBuildLauncherFallsBackToHeadless(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg := config.TestConfig()
	cfg.Media = config.MediaConfig{}

	var warn bytes.Buffer
	launcher, err := buildLauncher(cfg, &warn)
	if err != nil {
		t.Fatalf("buildLauncher: %v", err)
	}
	if !strings.Contains(warn.String(), "warning") {
		t.Errorf("expected a headless warning, got %q", warn.String())
	}

	h, err := handleFactory(launcher)("https://cdn.reel.dev/1.mp4")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if _, ok := h.(*media.HeadlessHandle); !ok {
		t.Errorf("expected a headless handle, got %T", h)
	}
	if cfg.Media.Headless {
		t.Error("caller's config must not be modified")
	}
}
