package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jonesrussell/yophone-bot/infrastructure/logger"
	"github.com/jonesrussell/yophone-bot/internal/yophone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiRequest struct {
	path string
	body map[string]any
}

// fakeAPI starts a YoPhone API stand-in and points the CLI at it.
func fakeAPI(t *testing.T, reply string) *[]apiRequest {
	t.Helper()

	var (
		mu       sync.Mutex
		requests []apiRequest
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		requests = append(requests, apiRequest{path: r.URL.Path, body: body})
		mu.Unlock()

		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(server.Close)

	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yml"))
	t.Setenv("YOPHONE_API_KEY", "cli-key")
	t.Setenv("YOPHONE_BASE_URL", server.URL)
	t.Setenv("LOG_LEVEL", "error")

	return &requests
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMeCommand_Table(t *testing.T) {
	requests := fakeAPI(t, `{"data":{"id":"bot-1","name":"Helper","stats":{"chats":1200000}}}`)

	out, err := runCLI(t, "me")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, "/getMe", (*requests)[0].path)
	assert.Contains(t, out, "data.id")
	assert.Contains(t, out, "bot-1")
	assert.Contains(t, out, "1200000")
}

func TestMemberCommand_JSON(t *testing.T) {
	requests := fakeAPI(t, `{"data":{"status":"member"}}`)

	out, err := runCLI(t, "--json", "member", "chan-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"channelId": "chan-1", "userId": "user-1"}, (*requests)[0].body)
	assert.JSONEq(t, `{"data":{"status":"member"}}`, out)
}

func TestSendCommand_Options(t *testing.T) {
	requests := fakeAPI(t, `{}`)

	_, err := runCLI(t, "send", "--to", "chat-1", "--text", "Pick", "--option", "Yes=yes", "--option", "No")
	require.NoError(t, err)

	body := (*requests)[0].body
	assert.Equal(t, "/sendMessage", (*requests)[0].path)
	assert.Equal(t, []any{
		map[string]any{"label": "Yes", "value": "yes"},
		map[string]any{"label": "No", "value": "No"},
	}, body["options"])
}

func TestWebhookSet_RequiresURL(t *testing.T) {
	requests := fakeAPI(t, `{}`)

	_, err := runCLI(t, "webhook", "set")
	require.ErrorIs(t, err, errWebhookURLRequired)
	assert.Empty(t, *requests)

	_, err = runCLI(t, "webhook", "set", "https://bot.example.com/webhook")
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.com/webhook", (*requests)[0].body["webhookURL"])
}

func TestCommandsSync_FromFlags(t *testing.T) {
	requests := fakeAPI(t, `{"success":true}`)

	out, err := runCLI(t, "commands", "sync", "--command", "/start=Start the bot", "--command", "help=Show help")
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"command": "start", "description": "Start the bot"},
		map[string]any{"command": "help", "description": "Show help"},
	}, (*requests)[0].body["commands"])
	assert.Contains(t, out, "/start")
}

func TestCommandsSync_NothingToPublish(t *testing.T) {
	fakeAPI(t, `{}`)

	_, err := runCLI(t, "commands", "sync")
	require.ErrorIs(t, err, errNoCommands)
}

func TestMissingAPIKey(t *testing.T) {
	fakeAPI(t, `{}`)
	t.Setenv("YOPHONE_API_KEY", "")

	_, err := runCLI(t, "me")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yophone.api_key")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "yophone-bot dev"))
}

// recordingSender records which send variant was chosen.
type recordingSender struct {
	method  string
	buttons yophone.Buttons
	files   []string
}

func (r *recordingSender) SendMessage(context.Context, string, string) (yophone.Result, error) {
	r.method = "text"
	return nil, nil
}

func (r *recordingSender) SendMessageWithOptions(context.Context, string, string, []yophone.ReplyOption) (yophone.Result, error) {
	r.method = "options"
	return nil, nil
}

func (r *recordingSender) SendMessageWithButtons(_ context.Context, _, _ string, b yophone.Buttons) (yophone.Result, error) {
	r.method = "buttons"
	r.buttons = b
	return nil, nil
}

func (r *recordingSender) SendMessageWithMediaURLs(context.Context, string, string, []string) (yophone.Result, error) {
	r.method = "media"
	return nil, nil
}

func (r *recordingSender) SendFiles(_ context.Context, _ string, paths []string, _ string) (yophone.Result, error) {
	r.method = "files"
	r.files = paths
	return nil, nil
}

func TestSendOptions_PicksVariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    sendOptions
		want    string
		wantErr error
	}{
		{"text", sendOptions{text: "hi"}, "text", nil},
		{"empty", sendOptions{}, "", errEmptyMessage},
		{"options", sendOptions{text: "pick", options: []string{"a=1"}}, "options", nil},
		{"links", sendOptions{text: "go", links: []string{"Site=https://example.com"}}, "buttons", nil},
		{"grid only", sendOptions{text: "go", options: []string{"a"}, grid: 2}, "buttons", nil},
		{"media", sendOptions{mediaURLs: []string{"https://example.com/a.png"}}, "media", nil},
		{"files", sendOptions{files: []string{"a.txt"}, text: "caption"}, "files", nil},
		{"files and media", sendOptions{files: []string{"a"}, mediaURLs: []string{"b"}}, "", errFilesAndMedia},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender := &recordingSender{}
			tt.opts.to = "chat"
			_, err := tt.opts.send(context.Background(), sender)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sender.method)
		})
	}
}

func TestParsePairs_EmptyLabel(t *testing.T) {
	t.Parallel()

	_, err := parsePairs([]string{"=value"}, "option")
	require.Error(t, err)
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	rows := flatten("", map[string]any{
		"b":    []any{"x", map[string]any{"c": true}},
		"a":    1.5,
		"none": nil,
		"list": []any{},
	})

	assert.Equal(t, []table.Row{
		{"a", "1.5"},
		{"b.0", "x"},
		{"b.1.c", "true"},
		{"list", "[]"},
		{"none", "null"},
	}, rows)
}

type fakeDeleter struct {
	calls int
	err   error
}

func (f *fakeDeleter) DeleteWebhook(context.Context) (yophone.Result, error) {
	f.calls++
	return nil, f.err
}

func TestClearWebhook(t *testing.T) {
	t.Parallel()

	ok := &fakeDeleter{}
	clearWebhook(context.Background(), ok, logger.NewNop())
	assert.Equal(t, 1, ok.calls)

	failing := &fakeDeleter{err: errors.New("unauthorized")}
	assert.NotPanics(t, func() { clearWebhook(context.Background(), failing, logger.NewNop()) })
	assert.Equal(t, 1, failing.calls)
}

func TestCommandsSync_NormalizesConfiguredNames(t *testing.T) {
	requests := fakeAPI(t, `{}`)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
bot:
  commands:
    - command: /start
      description: Start the bot
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	_, err := runCLI(t, "--json", "commands", "sync")
	require.NoError(t, err)

	assert.Equal(t, []any{
		map[string]any{"command": "start", "description": "Start the bot"},
	}, (*requests)[0].body["commands"])
}
