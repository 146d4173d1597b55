package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/kbukum/voicescribe/errors"
	"github.com/kbukum/voicescribe/logger"
)

const testToken = "123456:TEST-token"

// fakeBotAPI serves the subset of the Bot API the client uses.
type fakeBotAPI struct {
	t *testing.T

	mu       sync.Mutex
	calls    map[string][]url.Values
	files    map[string][]byte
	updates  []string
	nextID   int
	userAgnt string
}

func newFakeBotAPI(t *testing.T) (*fakeBotAPI, *httptest.Server) {
	f := &fakeBotAPI{t: t, calls: map[string][]url.Values{}, files: map[string][]byte{}, nextID: 100}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if strings.HasPrefix(r.URL.Path, "/file/bot"+testToken+"/") {
		id := strings.TrimSuffix(path.Base(r.URL.Path), ".oga")
		data, ok := f.files[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/bot"+testToken+"/") {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
		return
	}
	_ = r.ParseForm()
	method := path.Base(r.URL.Path)
	f.calls[method] = append(f.calls[method], r.Form)
	f.userAgnt = r.Header.Get("User-Agent")

	switch method {
	case "getMe":
		ok(w, `{"id":1,"is_bot":true,"first_name":"Voice","username":"voicescribe_bot"}`)
	case "sendMessage":
		f.nextID++
		ok(w, fmt.Sprintf(`{"message_id":%d,"date":0,"chat":{"id":%s,"type":"private"},"text":%q}`,
			f.nextID, r.Form.Get("chat_id"), r.Form.Get("text")))
	case "editMessageText":
		ok(w, fmt.Sprintf(`{"message_id":%s,"date":0,"chat":{"id":%s,"type":"private"}}`,
			r.Form.Get("message_id"), r.Form.Get("chat_id")))
	case "deleteWebhook":
		ok(w, `true`)
	case "getFile":
		id := r.Form.Get("file_id")
		data, found := f.files[id]
		if !found {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: invalid file_id"}`)
			return
		}
		ok(w, fmt.Sprintf(`{"file_id":%q,"file_unique_id":"u-%s","file_size":%d,"file_path":"voice/%s.oga"}`,
			id, id, len(data), id))
	case "getUpdates":
		if len(f.updates) == 0 {
			f.mu.Unlock()
			time.Sleep(20 * time.Millisecond)
			f.mu.Lock()
			ok(w, `[]`)
			return
		}
		batch := "[" + strings.Join(f.updates, ",") + "]"
		f.updates = nil
		ok(w, batch)
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func ok(w http.ResponseWriter, result string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"ok":true,"result":%s}`, result)
}

func (f *fakeBotAPI) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls[method])
}

func (f *fakeBotAPI) lastCall(method string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.calls[method]
	if len(c) == 0 {
		return nil
	}
	return c[len(c)-1]
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate func(*Config)) *Client {
	t.Helper()
	cfg := Config{
		Token:        testToken,
		APIEndpoint:  srv.URL + "/bot%s/%s",
		FileEndpoint: srv.URL + "/file/bot%s/%s",
		PollTimeout:  time.Second,
		SendRate:     1000,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := NewClient(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	return c
}

func TestNewClient_VerifiesToken(t *testing.T) {
	fake, srv := newFakeBotAPI(t)
	c := newTestClient(t, srv, nil)

	if c.BotUsername() != "voicescribe_bot" {
		t.Errorf("unexpected bot username %q", c.BotUsername())
	}
	if fake.callCount("getMe") != 1 {
		t.Errorf("expected getMe at connect, got %d calls", fake.callCount("getMe"))
	}
	if !strings.HasPrefix(fake.userAgnt, "voicescribe/") {
		t.Errorf("expected voicescribe user agent, got %q", fake.userAgnt)
	}

	_, err := NewClient(Config{
		Token:       "wrong",
		APIEndpoint: srv.URL + "/bot%s/%s",
	}, logger.Nop())
	if !apperrors.HasCode(err, apperrors.ErrCodeServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE for a rejected token, got %v", err)
	}
}

func TestNewClient_MissingToken(t *testing.T) {
	_, err := NewClient(Config{}, logger.Nop())
	if !apperrors.HasCode(err, apperrors.ErrCodeConfigInvalid) {
		t.Fatalf("expected CONFIG_INVALID, got %v", err)
	}
}

func TestClient_ReplyAndEdit(t *testing.T) {
	fake, srv := newFakeBotAPI(t)
	c := newTestClient(t, srv, nil)
	ctx := context.Background()

	id, err := c.Reply(ctx, 42, 7, "Processing your voice message...")
	if err != nil {
		t.Fatalf("Reply() failed: %v", err)
	}
	if id != 101 {
		t.Errorf("expected message id 101, got %d", id)
	}
	sent := fake.lastCall("sendMessage")
	if sent.Get("chat_id") != "42" || sent.Get("reply_to_message_id") != "7" {
		t.Errorf("unexpected sendMessage params %v", sent)
	}

	if err := c.Edit(ctx, 42, id, "Dobar dan"); err != nil {
		t.Fatalf("Edit() failed: %v", err)
	}
	edit := fake.lastCall("editMessageText")
	if edit.Get("message_id") != "101" || edit.Get("text") != "Dobar dan" {
		t.Errorf("unexpected editMessageText params %v", edit)
	}
}

func TestClient_Download(t *testing.T) {
	fake, srv := newFakeBotAPI(t)
	fake.files["voice-1"] = []byte("OggS voice payload")
	c := newTestClient(t, srv, nil)
	ctx := context.Background()

	data, err := c.Download(ctx, "voice-1")
	if err != nil {
		t.Fatalf("Download() failed: %v", err)
	}
	if string(data) != "OggS voice payload" {
		t.Errorf("unexpected payload %q", data)
	}

	_, err = c.Download(ctx, "missing")
	if !apperrors.HasCode(err, apperrors.ErrCodeDownloadFailed) {
		t.Errorf("expected DOWNLOAD_FAILED for unknown file, got %v", err)
	}
}

func TestClient_DownloadTooLarge(t *testing.T) {
	fake, srv := newFakeBotAPI(t)
	fake.files["big"] = make([]byte, 64)
	c := newTestClient(t, srv, func(cfg *Config) { cfg.MaxFileSize = 32 })

	_, err := c.Download(context.Background(), "big")
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT for an oversized file, got %v", err)
	}
}

func TestClient_Updates(t *testing.T) {
	fake, srv := newFakeBotAPI(t)
	fake.updates = []string{`{"update_id":5,"message":{"message_id":9,"date":0,
		"chat":{"id":42,"type":"private"},"from":{"id":7,"is_bot":false,"first_name":"Mika"},
		"voice":{"file_id":"voice-1","file_unique_id":"u1","duration":3,"mime_type":"audio/ogg","file_size":18}}}`}
	c := newTestClient(t, srv, func(cfg *Config) { cfg.DropPendingUpdates = true })

	ch := c.Updates(context.Background())
	select {
	case u := <-ch:
		if u.UpdateID != 5 || u.Message == nil || u.Message.Voice == nil {
			t.Fatalf("unexpected update %+v", u)
		}
		if u.Message.Voice.FileID != "voice-1" {
			t.Errorf("unexpected file id %q", u.Message.Voice.FileID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for update")
	}

	c.StopUpdates()
	if fake.callCount("deleteWebhook") != 1 {
		t.Error("expected pending updates to be dropped")
	}
	if fake.lastCall("deleteWebhook").Get("drop_pending_updates") != "true" {
		t.Error("expected drop_pending_updates=true")
	}
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{Token: "t"}
	cfg.ApplyDefaults()
	if cfg.MaxFileSize != MaxFileSize || cfg.PollTimeout != 30*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
	cfg.MaxFileSize = MaxFileSize + 1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error above the Bot API download limit")
	}
}
