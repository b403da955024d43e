package app

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scrolly/internal/config"
	"scrolly/internal/engine"
	"scrolly/internal/narrative"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRows = `[
  {"level":"national","metric":"lost_colonies","period_index":0,"value":100},
  {"level":"national","metric":"lost_colonies","period_index":1,"value":140}
]`

const testStory = `title: Colonies
steps:
  - index: 0
    level: national
    metric: lost_colonies
    caption: Losses climbed.
`

func freePort(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func testConfig(t *testing.T, dataBody string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "rows.json")
	story := filepath.Join(dir, "story.yaml")
	require.NoError(t, os.WriteFile(data, []byte(dataBody), 0o644))
	require.NoError(t, os.WriteFile(story, []byte(testStory), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	body := "app:\n  http_addr: \"" + freePort(t) + "\"\n" +
		"data:\n  path: \"" + data + "\"\n" +
		"story:\n  path: \"" + story + "\"\n" +
		"journal:\n  enabled: true\n  path: \"" + filepath.Join(dir, "journal.db") + "\"\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	return cfg
}

func TestNewAppRejectsNilConfig(t *testing.T) {
	_, err := NewApp(nil)
	assert.Error(t, err)
}

func TestBuildRequiresStory(t *testing.T) {
	cfg := testConfig(t, testRows)
	cfg.Story.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := NewApp(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "story")
}

func TestRunServesAndLoads(t *testing.T) {
	cfg := testConfig(t, testRows)
	a, err := NewApp(cfg)
	require.NoError(t, err)
	assert.Contains(t, a.Summary.Render(), "lost_colonies")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return a.Engine().Report().Status == engine.StatusReady
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.App.HTTPAddr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestRunKeepsServingAfterLoadFailure(t *testing.T) {
	cfg := testConfig(t, `{"not":"rows"}`)
	story, err := narrative.NewStory("", []narrative.Step{{Index: 0, Level: "x", Metric: "y"}})
	require.NoError(t, err)
	a, err := NewApp(cfg, WithStory(story))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		return a.Engine().Report().Status == engine.StatusFailed
	}, 5*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + cfg.App.HTTPAddr + "/api/levels")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusInternalServerError
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestSummaryRender(t *testing.T) {
	s := &StartupSummary{
		HTTPAddr:    ":8080",
		Source:      "data/colonies.json",
		Format:      "JSON",
		StoryTitle:  "Colonies",
		Steps:       []string{"0 national/lost_colonies"},
		Offset:      0.6,
		Arbitration: "last_writer_wins",
		Journal:     "off",
	}
	out := s.Render()
	for _, want := range []string{"STARTUP SUMMARY", ":8080", "data/colonies.json", "0.60", "last_writer_wins", "national/lost_colonies"} {
		assert.Contains(t, out, want)
	}
}
