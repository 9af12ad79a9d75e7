package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"patreonscraper/pkg/config"
	"patreonscraper/pkg/errors"
	"patreonscraper/pkg/logger"
	"patreonscraper/pkg/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// mockPatreonServer mimics the Patreon endpoints used by a run.
// "{{base}}" in fixtures is replaced with the server URL.
type mockPatreonServer struct {
	server        *httptest.Server
	loginCalls    int32
	userCalls     int32
	postsCalls    int32
	downloadCalls int32

	mu        sync.Mutex
	failLogin bool
	campaigns string
	posts     map[string]string
	files     map[string]string
}

func newMockPatreonServer() *mockPatreonServer {
	m := &mockPatreonServer{
		campaigns: `[{"id": "100", "type": "campaign", "attributes": {"name": "Jane Doe"}}]`,
		posts: map[string]string{
			"100": `{
				"data": [
					{"id": "42", "type": "post",
					 "attributes": {"title": "Hello: World?", "content": "<p>Hi <b>there</b></p>",
					                "published_at": "2023-05-01T12:00:00.000+00:00", "current_user_can_view": true},
					 "relationships": {"user_defined_tags": {"data": [{"id": "user_defined;art", "type": "post_tag"}]}}},
					{"id": "43", "type": "post",
					 "attributes": {"title": "Locked", "content": "<p>secret</p>", "current_user_can_view": false}}
				],
				"included": [
					{"id": "a1", "type": "attachment", "attributes": {"name": "pack.zip", "url": "{{base}}/files/pack.zip"},
					 "relationships": {"post": {"data": {"id": "42", "type": "post"}}}}
				],
				"meta": {"pagination": {"cursors": {"next": null}}}
			}`,
		},
		files: map[string]string{
			"/files/pack.zip":  "zip-bytes",
			"/files/cover.jpg": "jpeg-bytes",
		},
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.loginCalls, 1)
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.failLogin {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errors":[{"detail":"Incorrect email or password."}]}`)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "abc", Path: "/"})
		fmt.Fprint(w, `{"data":{"id":"7","type":"user"}}`)
	})

	mux.HandleFunc("/api/current_user", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.userCalls, 1)
		m.mu.Lock()
		defer m.mu.Unlock()

		fmt.Fprintf(w, `{"data":{"id":"7","type":"user"},"included":%s}`, m.campaigns)
	})

	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.postsCalls, 1)
		m.mu.Lock()
		defer m.mu.Unlock()

		body, ok := m.posts[r.URL.Query().Get("filter[campaign_id]")]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, strings.ReplaceAll(body, "{{base}}", m.server.URL))
	})

	mux.HandleFunc("/files/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.downloadCalls, 1)
		m.mu.Lock()
		defer m.mu.Unlock()

		data, ok := m.files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, data)
	})

	mux.HandleFunc("/slow/big.bin", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.downloadCalls, 1)
		chunk := make([]byte, 1024)
		for i := 0; i < 6; i++ {
			w.Write(chunk)
			w.(http.Flusher).Flush()
			time.Sleep(100 * time.Millisecond)
		}
	})

	m.server = httptest.NewServer(mux)
	return m
}

func (m *mockPatreonServer) Close() {
	m.server.Close()
}

func testConfig(t *testing.T, m *mockPatreonServer) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Patreon.BaseURL = m.server.URL
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.Download.Timeout = 5 * time.Second
	return cfg
}

func newTestScraper(t *testing.T, cfg *config.Config) *Scraper {
	t.Helper()
	s, err := New(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	return s
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

func TestRunEndToEnd(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()

	cfg := testConfig(t, m)
	summary := newTestScraper(t, cfg).Run(context.Background(), "fan@example.com", "pw")

	require.NoError(t, summary.Err)
	assert.True(t, summary.LoggedIn)
	assert.Equal(t, 1, summary.Campaigns)
	assert.Equal(t, 1, summary.PostsSaved)
	assert.Equal(t, 1, summary.PostsSkipped)
	assert.Equal(t, 0, summary.PostsFailed)
	assert.Equal(t, 1, summary.FilesDownloaded)
	assert.Equal(t, 2, summary.FilesWritten)
	assert.False(t, summary.HasFailures())

	creatorDir := filepath.Join(cfg.Output.BaseDirectory, "Jane Doe")
	assert.Equal(t, []string{"42 - art - Hello World - 2023-05-01"}, listDir(t, creatorDir))

	postDir := filepath.Join(creatorDir, "42 - art - Hello World - 2023-05-01")
	assert.Equal(t, []string{"pack.zip", "post.html"}, listDir(t, postDir))

	html, err := os.ReadFile(filepath.Join(postDir, "post.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>\n Hi\n <b>\n  there\n </b>\n</p>\n", string(html))

	zip, err := os.ReadFile(filepath.Join(postDir, "pack.zip"))
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(zip))

	assert.Equal(t, int32(1), atomic.LoadInt32(&m.loginCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.postsCalls))
}

func TestRunLoginFailure(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()
	m.failLogin = true

	cfg := testConfig(t, m)
	summary := newTestScraper(t, cfg).Run(context.Background(), "fan@example.com", "wrong")

	require.Error(t, summary.Err)
	assert.False(t, summary.LoggedIn)
	assert.True(t, errors.IsType(summary.Err, errors.ErrorTypeStatus))
	assert.Equal(t, 401, errors.StatusCode(summary.Err))
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.userCalls))
	assert.Empty(t, listDir(t, cfg.Output.BaseDirectory))
}

func TestRunNoCampaigns(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()
	m.campaigns = `[]`

	summary := newTestScraper(t, testConfig(t, m)).Run(context.Background(), "fan@example.com", "pw")

	assert.NoError(t, summary.Err)
	assert.Equal(t, 0, summary.Campaigns)
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.postsCalls))
}

func TestRunCampaignFailureContinues(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()
	m.campaigns = `[
		{"id": "999", "type": "campaign", "attributes": {"name": "Broken Creator"}},
		{"id": "100", "type": "campaign", "attributes": {"name": "Jane Doe"}}
	]`

	cfg := testConfig(t, m)
	summary := newTestScraper(t, cfg).Run(context.Background(), "fan@example.com", "pw")

	assert.NoError(t, summary.Err)
	assert.Equal(t, 2, summary.Campaigns)
	assert.Equal(t, 1, summary.CampaignsFailed)
	assert.Equal(t, 1, summary.PostsSaved)
	assert.True(t, summary.HasFailures())
	assert.Equal(t, []string{"Jane Doe"}, listDir(t, cfg.Output.BaseDirectory))
}

func TestRunPostAndFileFailures(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()
	m.posts["100"] = `{
		"data": [
			{"id": "1", "type": "post", "attributes": {"title": 5, "current_user_can_view": true}},
			{"id": "2", "type": "post", "attributes": {"title": "Ok", "current_user_can_view": true,
			 "image": {"large_url": "{{base}}/files/cover.jpg"}}}
		],
		"included": [
			{"id": "a1", "type": "attachment", "attributes": {"name": "gone.zip", "url": "{{base}}/files/gone.zip"},
			 "relationships": {"post": {"data": {"id": "2", "type": "post"}}}}
		]
	}`

	cfg := testConfig(t, m)
	summary := newTestScraper(t, cfg).Run(context.Background(), "fan@example.com", "pw")

	assert.NoError(t, summary.Err)
	assert.Equal(t, 1, summary.PostsFailed)
	assert.Equal(t, 1, summary.PostsSaved)
	assert.Equal(t, 1, summary.FilesFailed)
	assert.Equal(t, 1, summary.FilesDownloaded)

	postDir := filepath.Join(cfg.Output.BaseDirectory, "Jane Doe", "2 -  - Ok - ")
	assert.Equal(t, []string{"2 - Ok.jpg"}, listDir(t, postDir))
}

func TestRunSlowAttachmentOutlastsTimeout(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()
	m.posts["100"] = `{
		"data": [{"id": "9", "type": "post", "attributes": {"title": "Video", "current_user_can_view": true}}],
		"included": [
			{"id": "a9", "type": "attachment", "attributes": {"name": "big.bin", "url": "{{base}}/slow/big.bin"},
			 "relationships": {"post": {"data": {"id": "9", "type": "post"}}}}
		]
	}`

	cfg := testConfig(t, m)
	cfg.Download.Timeout = 300 * time.Millisecond

	summary := newTestScraper(t, cfg).Run(context.Background(), "fan@example.com", "pw")
	require.NoError(t, summary.Err)
	assert.Equal(t, 1, summary.FilesDownloaded)
	assert.Equal(t, 0, summary.FilesFailed)

	info, err := os.Stat(filepath.Join(cfg.Output.BaseDirectory, "Jane Doe", "9 -  - Video - ", "big.bin"))
	require.NoError(t, err)
	assert.Equal(t, int64(6*1024), info.Size())
}

func TestRunSkipFlagsAndMetadata(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()

	cfg := testConfig(t, m)
	cfg.Download.SkipAttachments = true
	cfg.Storage.SaveMetadata = true
	cfg.Storage.MetadataFormat = "yaml"

	summary := newTestScraper(t, cfg).Run(context.Background(), "fan@example.com", "pw")
	assert.NoError(t, summary.Err)
	assert.Equal(t, 0, summary.FilesDownloaded)
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.downloadCalls))

	postDir := filepath.Join(cfg.Output.BaseDirectory, "Jane Doe", "42 - art - Hello World - 2023-05-01")
	assert.Equal(t, []string{"post.html", "post.yaml"}, listDir(t, postDir))

	data, err := os.ReadFile(filepath.Join(postDir, "post.yaml"))
	require.NoError(t, err)
	var meta metadata.PostMetadata
	require.NoError(t, yaml.Unmarshal(data, &meta))
	assert.Equal(t, "42", meta.ID)
	assert.Equal(t, "100", meta.CampaignID)
	assert.Equal(t, "Hi there", meta.Excerpt)
	assert.Equal(t, []string{"art"}, meta.Tags)
	assert.Empty(t, meta.Images)
	assert.Equal(t, 2, summary.FilesWritten)
}

func TestRunMetadataListsInlineImages(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()
	m.posts["100"] = `{
		"data": [{"id": "5", "type": "post", "attributes": {"title": "Pics", "current_user_can_view": true,
		          "content": "<p>one <img src=\"https://cdn/a.png\"></p><p><img src=\"https://cdn/b.png\"></p>"}}]
	}`

	cfg := testConfig(t, m)
	cfg.Storage.SaveMetadata = true

	summary := newTestScraper(t, cfg).Run(context.Background(), "fan@example.com", "pw")
	require.NoError(t, summary.Err)

	data, err := os.ReadFile(filepath.Join(cfg.Output.BaseDirectory, "Jane Doe", "5 -  - Pics - ", "post.json"))
	require.NoError(t, err)

	var meta metadata.PostMetadata
	require.NoError(t, json.Unmarshal(data, &meta))
	assert.Equal(t, []string{"https://cdn/a.png", "https://cdn/b.png"}, meta.Images)
	assert.Equal(t, "one", meta.Excerpt)
}

func TestRunWithoutCreatorFolders(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()

	cfg := testConfig(t, m)
	cfg.Output.CreateCreatorFolders = false

	summary := newTestScraper(t, cfg).Run(context.Background(), "fan@example.com", "pw")
	assert.NoError(t, summary.Err)
	assert.Equal(t, []string{"42 - art - Hello World - 2023-05-01"}, listDir(t, cfg.Output.BaseDirectory))
}

func TestCampaignFilter(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()
	m.campaigns = `[
		{"id": "100", "type": "campaign", "attributes": {"name": "Jane Doe"}},
		{"id": "200", "type": "campaign", "attributes": {"name": "John Roe"}}
	]`

	cfg := testConfig(t, m)
	s := newTestScraper(t, cfg)
	s.SetCampaignFilter([]string{"jane doe"})

	summary := s.Run(context.Background(), "fan@example.com", "pw")
	assert.NoError(t, summary.Err)
	assert.Equal(t, 1, summary.Campaigns)
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.postsCalls))

	s.SetCampaignFilter([]string{"nobody"})
	summary = s.Run(context.Background(), "fan@example.com", "pw")
	assert.Equal(t, 0, summary.Campaigns)
}

func TestCampaigns(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()

	s := newTestScraper(t, testConfig(t, m))
	campaigns, err := s.Campaigns(context.Background(), "fan@example.com", "pw")
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "Jane Doe", campaigns[0].CreatorName)
	assert.Equal(t, int32(0), atomic.LoadInt32(&m.postsCalls))

	m.mu.Lock()
	m.failLogin = true
	m.mu.Unlock()

	_, err = s.Campaigns(context.Background(), "fan@example.com", "pw")
	assert.Error(t, err)
}

func TestRunCancelled(t *testing.T) {
	m := newMockPatreonServer()
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := newTestScraper(t, testConfig(t, m)).Run(ctx, "fan@example.com", "pw")
	require.Error(t, summary.Err)
	assert.Equal(t, 0, summary.Campaigns)
}

func TestNewWithClientRejectsBadPermissions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.BaseDirectory = t.TempDir()
	cfg.Storage.DirPermissions = "rwx"

	_, err := NewWithClient(cfg, nil, logger.NewNopLogger())
	assert.Error(t, err)
}
