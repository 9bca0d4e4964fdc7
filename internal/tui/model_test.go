package tui

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/geminiwin95/internal/api"
	"github.com/diogo/geminiwin95/internal/chat"
	"github.com/diogo/geminiwin95/internal/config"
	"github.com/diogo/geminiwin95/internal/models"
)

type stubSender struct {
	mu     sync.Mutex
	result *models.Result
	err    error
	keys   []string
	reqs   []*api.Request
}

func (s *stubSender) Do(_ context.Context, apiKey string, req *api.Request) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, apiKey)
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func newTestStore(t *testing.T, apiKey string) *config.Store {
	t.Helper()
	t.Setenv(config.EnvHomeDir, t.TempDir())
	t.Setenv(config.EnvAPIKey, "")

	cfg := config.DefaultConfig()
	cfg.APIKey = apiKey
	cfg.SavedGems = []models.SavedGem{{Name: "Pirate", Instruction: "Talk like a pirate"}}
	return config.NewStore(cfg)
}

func newTestModel(t *testing.T, store *config.Store, sender chat.Sender) Model {
	t.Helper()
	session := chat.NewSession(store, sender)
	m := NewChatModel(session, store)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	next, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T", updated)
	}
	return next, cmd
}

// enter types input into the textarea and presses Enter
func enter(t *testing.T, m Model, input string) (Model, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(input)
	return update(t, m, key(tea.KeyEnter))
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})

	if !m.ready {
		t.Fatal("model should be ready after the first size message")
	}
	if m.viewport.Width != 96 {
		t.Errorf("viewport width = %d, want 96", m.viewport.Width)
	}
	if m.viewport.Height < 5 {
		t.Errorf("viewport height = %d", m.viewport.Height)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 10})
	if m.viewport.Height != 5 {
		t.Errorf("small windows should keep the minimum height, got %d", m.viewport.Height)
	}
}

func TestModel_View(t *testing.T) {
	var m Model
	if !strings.Contains(m.View(), "Initializing") {
		t.Error("unready model should show the init screen")
	}

	m = newTestModel(t, newTestStore(t, "k"), &stubSender{})
	view := m.View()
	for _, want := range []string{"geminiwin95", models.DefaultModel, "Persona: Default", "Welcome", "No attachments"} {
		if !strings.Contains(view, want) {
			t.Errorf("view should contain %q", want)
		}
	}
}

func TestModel_SendText(t *testing.T) {
	sender := &stubSender{result: models.TextResult("**Ahoy**")}
	m := newTestModel(t, newTestStore(t, "secret"), sender)

	m, cmd := enter(t, m, "  hello  ")
	if cmd == nil || !m.loading {
		t.Fatal("enter should start a send")
	}
	if len(m.messages) != 1 || m.messages[0].Role != models.RoleUser || m.messages[0].Content != "hello" {
		t.Fatalf("messages = %+v", m.messages)
	}
	if m.textarea.Value() != "" {
		t.Error("input should be cleared")
	}

	// Enter is ignored while a send is outstanding
	if _, cmd := enter(t, m, "again"); cmd != nil {
		t.Error("enter should do nothing while loading")
	}

	msg := m.sendMessage("hello")()
	dm, ok := msg.(dispatchMsg)
	if !ok {
		t.Fatalf("send returned %T", msg)
	}
	if dm.err != nil {
		t.Fatalf("unexpected error: %v", dm.err)
	}

	m, _ = update(t, m, dm)
	if m.loading || m.cancel != nil {
		t.Error("dispatch should end the loading state")
	}
	last := m.messages[len(m.messages)-1]
	if last.Role != models.RoleAssistant || last.Content != "**Ahoy**" {
		t.Errorf("last message = %+v", last)
	}
	if len(sender.keys) != 1 || sender.keys[0] != "secret" {
		t.Errorf("sender keys = %v", sender.keys)
	}
	if !strings.Contains(m.viewport.View(), "Ahoy") {
		t.Error("reply should be rendered in the viewport")
	}
}

func TestModel_SendWithAttachment(t *testing.T) {
	sender := &stubSender{result: models.TextResult("seen")}
	m := newTestModel(t, newTestStore(t, "k"), sender)

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("some notes"), 0o600); err != nil {
		t.Fatal(err)
	}

	m, _ = enter(t, m, "/attach "+path)
	if m.err != nil {
		t.Fatalf("attach failed: %v", m.err)
	}
	if !strings.Contains(m.notice, "notes.txt") {
		t.Errorf("notice = %q", m.notice)
	}
	if !strings.Contains(m.View(), "1. notes.txt") {
		t.Error("queued attachment should be listed")
	}

	// attachments alone are enough to send
	m, cmd := enter(t, m, "")
	if cmd == nil {
		t.Fatal("attachment-only send should start")
	}
	if !strings.Contains(m.messages[0].Content, "[attached: notes.txt]") {
		t.Errorf("user message = %q", m.messages[0].Content)
	}

	m, _ = update(t, m, m.sendMessage("")())
	if m.session.Attachments().Len() != 0 {
		t.Error("buffer should be empty after a send")
	}
	if len(sender.reqs) != 1 || !strings.Contains(string(sender.reqs[0].Body), "inline_data") {
		t.Error("request should carry the attachment")
	}
}

func TestModel_SendImage(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\nfake")
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	sender := &stubSender{result: models.ImageResult(uri)}

	store := newTestStore(t, "k")
	m := newTestModel(t, store, sender)
	m.session.SelectPersona(models.PersonaImageGeneration)

	m, _ = update(t, m, m.sendMessage("a red cat")())

	last := m.messages[len(m.messages)-1]
	if last.ImagePath == "" {
		t.Fatalf("image should be saved, got %+v", last)
	}
	data, err := os.ReadFile(last.ImagePath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(png) {
		t.Error("saved image content mismatch")
	}
	if !strings.HasPrefix(filepath.Base(last.ImagePath), "a_red_cat_") {
		t.Errorf("filename = %s", filepath.Base(last.ImagePath))
	}
	if got, ok := m.lastAssistantContent(); !ok || got != last.ImagePath {
		t.Errorf("lastAssistantContent() = %q", got)
	}
}

func TestModel_SendErrors(t *testing.T) {
	testCases := []struct {
		name     string
		apiKey   string
		err      error
		wantText string
		wantHint bool
	}{
		{"missing key", "", nil, "Error: API Key not set", true},
		{"transport", "k", errors.New("boom"), "Error: boom", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sender := &stubSender{err: tc.err, result: models.TextResult("x")}
			m := newTestModel(t, newTestStore(t, tc.apiKey), sender)

			m, _ = update(t, m, m.sendMessage("hi")())

			last := m.messages[len(m.messages)-1]
			if last.Role != models.RoleSystem || last.Content != tc.wantText {
				t.Errorf("last message = %+v, want %q", last, tc.wantText)
			}
			if got := strings.HasPrefix(m.notice, "Hint:"); got != tc.wantHint {
				t.Errorf("notice = %q", m.notice)
			}
			if tc.apiKey == "" && len(sender.keys) != 0 {
				t.Error("no call should be made without a key")
			}
		})
	}
}

func TestModel_EscCancelsInFlight(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})

	ctx, cancel := context.WithCancel(context.Background())
	m.loading = true
	m.cancel = cancel

	m, cmd := update(t, m, key(tea.KeyEsc))
	if cmd != nil {
		t.Error("esc while loading should not quit")
	}
	if ctx.Err() == nil {
		t.Error("esc should cancel the request")
	}
	if m.notice == "" {
		t.Error("expected a cancelling notice")
	}

	m.loading = false
	_, cmd = update(t, m, key(tea.KeyEsc))
	if cmd == nil {
		t.Fatal("esc when idle should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_ModeToggles(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})

	m, _ = update(t, m, key(tea.KeyCtrlY))
	if !m.session.Mode().State().Synthesis {
		t.Error("ctrl+y should turn synthesis on")
	}
	if !strings.HasPrefix(m.notice, "Synthesis on") {
		t.Errorf("notice = %q", m.notice)
	}

	m, _ = update(t, m, key(tea.KeyCtrlS))
	if !m.session.Mode().State().Search {
		t.Error("ctrl+s should turn search on")
	}
	if !strings.Contains(m.View(), "[x] Web search") {
		t.Error("mode line should show search on")
	}

	m, _ = enter(t, m, "/search")
	if m.session.Mode().State().Search {
		t.Error("/search should toggle search off")
	}
	m, _ = enter(t, m, "/synth")
	if m.session.Mode().State().Synthesis {
		t.Error("/synth should toggle synthesis off")
	}
}

func TestModel_PersonaSelector(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})

	m, _ = update(t, m, key(tea.KeyCtrlG))
	if !m.selector.active || m.selector.target != targetPrimary {
		t.Fatal("ctrl+g should open the primary selector")
	}
	if !strings.Contains(m.View(), "Select Persona") {
		t.Error("selector should be rendered")
	}

	m, _ = update(t, m, runes("pir"))
	filtered := m.selector.filtered()
	if len(filtered) != 1 || filtered[0].Name != "Pirate" {
		t.Fatalf("filtered = %+v", filtered)
	}

	m, _ = update(t, m, key(tea.KeyBackspace))
	if m.selector.filter != "pi" {
		t.Errorf("filter = %q", m.selector.filter)
	}
	m, _ = update(t, m, runes("r"))

	m, _ = update(t, m, key(tea.KeyEnter))
	if m.selector.active {
		t.Error("selector should close after a selection")
	}
	if active := m.session.Mode().State().Active; active.Kind != models.KindCustom || active.Name != "Pirate" {
		t.Errorf("active = %+v", active)
	}

	// secondary slot
	m, _ = update(t, m, key(tea.KeyCtrlN))
	if !m.selector.active || m.selector.target != targetSecondary {
		t.Fatal("ctrl+n should open the secondary selector")
	}
	m, _ = update(t, m, runes("guided"))
	m, _ = update(t, m, key(tea.KeyEnter))
	if got := m.session.Mode().State().Secondary.Name; got != models.PersonaGuidedLearning {
		t.Errorf("secondary = %s", got)
	}

	// esc closes without changing anything
	m, _ = update(t, m, key(tea.KeyCtrlG))
	m, _ = update(t, m, key(tea.KeyDown))
	m, _ = update(t, m, key(tea.KeyEsc))
	if m.selector.active {
		t.Error("esc should close the selector")
	}
	if m.session.Mode().State().Active.Name != "Pirate" {
		t.Error("cancelled selection should keep the active persona")
	}
}

func TestModel_SelectorDeepResearch(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})

	m, _ = enter(t, m, "/gems")
	if !m.selector.active {
		t.Fatal("/gems should open the selector")
	}
	m, _ = update(t, m, runes("deep"))
	m, _ = update(t, m, key(tea.KeyEnter))

	state := m.session.Mode().State()
	if !state.Active.IsDeepResearch() || !state.Search {
		t.Errorf("state = %+v", state)
	}
	if !strings.Contains(m.notice, "web search on") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestModel_SelectorCursorWraps(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})
	m, _ = update(t, m, key(tea.KeyCtrlG))

	total := len(m.selector.filtered())
	m, _ = update(t, m, key(tea.KeyUp))
	if m.selector.cursor != total-1 {
		t.Errorf("cursor = %d, want %d", m.selector.cursor, total-1)
	}
	m, _ = update(t, m, key(tea.KeyDown))
	if m.selector.cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.selector.cursor)
	}
}

func TestModel_ConfigReload(t *testing.T) {
	store := newTestStore(t, "k")
	m := newTestModel(t, store, &stubSender{})
	m, _ = update(t, m, key(tea.KeyCtrlG))

	cfg := store.Config()
	cfg.SavedGems = append(cfg.SavedGems, models.SavedGem{Name: "Poet", Instruction: "Rhyme"})
	store.Set(cfg)

	m, _ = update(t, m, configReloadedMsg{})
	var names []string
	for _, p := range m.selector.personas {
		names = append(names, p.Name)
	}
	if !strings.Contains(strings.Join(names, ","), "Poet") {
		t.Errorf("reloaded personas = %v", names)
	}

	m, _ = update(t, m, key(tea.KeyEsc))
	m, _ = update(t, m, configReloadedMsg{})
	if m.notice != "Settings reloaded" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestModel_ConfigReloadError(t *testing.T) {
	store := newTestStore(t, "k")
	session := chat.NewSession(store, &stubSender{})
	m := NewChatModel(session, store, WithNotice("Settings hot reload is off: too many open files"))
	if m.notice != "Settings hot reload is off: too many open files" {
		t.Errorf("initial notice = %q", m.notice)
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)
	m, _ = update(t, m, configErrorMsg{err: errors.New("failed to parse config file: bad json")})
	if m.notice != "Settings not reloaded: failed to parse config file: bad json" {
		t.Errorf("notice = %q", m.notice)
	}
	if !strings.Contains(m.View(), "Settings not reloaded") {
		t.Error("the reload failure should be visible in the view")
	}

	m, _ = update(t, m, key(tea.KeyCtrlG))
	m, _ = update(t, m, configErrorMsg{err: errors.New("unexpected EOF")})
	if !m.selector.active {
		t.Error("a reload failure should not close the selector")
	}
	if m.notice != "Settings not reloaded: unexpected EOF" {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestModel_SelectorCtrlCCancelsInFlight(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})
	m, _ = update(t, m, key(tea.KeyCtrlG))
	if !m.selector.active {
		t.Fatal("selector should be open")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.loading = true
	m.cancel = cancel

	_, cmd := update(t, m, key(tea.KeyCtrlC))
	if ctx.Err() == nil {
		t.Error("ctrl+c in the selector should cancel the request")
	}
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModel_Commands(t *testing.T) {
	testCases := []struct {
		input      string
		wantErr    string
		wantNotice string
	}{
		{"/help", "", "/attach"},
		{"/attach", "usage: /attach", ""},
		{"/attach /does/not/exist.png", "attachment exist.png", ""},
		{"/detach x", "usage: /detach", ""},
		{"/detach 3", "no attachment #3", ""},
		{"/detach", "", "Removed 0 attachment(s)"},
		{"/copy", "nothing to copy", ""},
		{"/bogus", "unknown command /bogus", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			m := newTestModel(t, newTestStore(t, "k"), &stubSender{})
			m, cmd := enter(t, m, tc.input)

			if cmd != nil {
				t.Error("commands should not start a send")
			}
			if len(m.messages) != 0 {
				t.Error("commands should not add to the transcript")
			}
			if tc.wantErr == "" && m.err != nil {
				t.Errorf("unexpected error: %v", m.err)
			}
			if tc.wantErr != "" && (m.err == nil || !strings.Contains(m.err.Error(), tc.wantErr)) {
				t.Errorf("err = %v, want %q", m.err, tc.wantErr)
			}
			if !strings.Contains(m.notice, tc.wantNotice) {
				t.Errorf("notice = %q, want %q", m.notice, tc.wantNotice)
			}
		})
	}
}

func TestModel_DetachByIndex(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})

	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(name), 0o600); err != nil {
			t.Fatal(err)
		}
		m, _ = enter(t, m, "/attach "+path)
	}

	m, _ = enter(t, m, "/detach 1")
	if m.notice != "Removed a.txt" {
		t.Errorf("notice = %q", m.notice)
	}
	list := m.session.Attachments().List()
	if len(list) != 1 || list[0].Name != "b.txt" {
		t.Errorf("remaining = %+v", list)
	}
}

func TestModel_ClearAndQuit(t *testing.T) {
	m := newTestModel(t, newTestStore(t, "k"), &stubSender{})
	m.messages = []models.Message{{Role: models.RoleUser, Content: "hi"}}

	m, _ = enter(t, m, "/clear")
	if len(m.messages) != 0 {
		t.Error("/clear should empty the transcript")
	}

	for _, input := range []string{"/quit", "/exit", "quit"} {
		_, cmd := enter(t, m, input)
		if cmd == nil {
			t.Fatalf("%s should quit", input)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", input)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	testCases := []struct {
		in   string
		want string
	}{
		{"~/pic.png", filepath.Join(home, "pic.png")},
		{`"/tmp/with space.png"`, "/tmp/with space.png"},
		{"relative.txt", "relative.txt"},
	}
	for _, tc := range testCases {
		if got := expandPath(tc.in); got != tc.want {
			t.Errorf("expandPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatSize(t *testing.T) {
	testCases := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tc := range testCases {
		if got := formatSize(tc.n); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
