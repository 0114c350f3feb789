package shell

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pharmdesk/internal/api"
	"github.com/dmitrijs2005/pharmdesk/internal/module"
	"github.com/dmitrijs2005/pharmdesk/internal/prefs"
	"github.com/dmitrijs2005/pharmdesk/internal/registry"
	"github.com/dmitrijs2005/pharmdesk/internal/session"
)

const pharmacistMe = `{"ok":true,"user":{"email":"a@b.com","role":"pharmacist","org_name":"Acme"}}`

// fakeBackend answers /auth/login and /auth/me from its fields; every
// other path answers 401 when expired is set, 200 {} otherwise.
type fakeBackend struct {
	mu          sync.Mutex
	loginStatus int
	loginBody   string
	meStatus    int
	meBody      string
	expired     bool

	loginCalls atomic.Int32
	meCalls    atomic.Int32
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch r.URL.Path {
	case "/auth/login":
		b.loginCalls.Add(1)
		w.WriteHeader(b.loginStatus)
		_, _ = io.WriteString(w, b.loginBody)
	case "/auth/me":
		b.meCalls.Add(1)
		w.WriteHeader(b.meStatus)
		_, _ = io.WriteString(w, b.meBody)
	default:
		if b.expired {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{}`)
	}
}

func (b *fakeBackend) expire() {
	b.mu.Lock()
	b.expired = true
	b.mu.Unlock()
}

// queue stands in for the program: notifications are collected and fed to
// Update by pump.
type queue struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (q *queue) push(msg tea.Msg) {
	q.mu.Lock()
	q.msgs = append(q.msgs, msg)
	q.mu.Unlock()
}

func (q *queue) take() []tea.Msg {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.msgs
	q.msgs = nil
	return out
}

type fixture struct {
	t       *testing.T
	backend *fakeBackend
	store   *prefs.Store
	reg     *registry.Registry
	ctrl    *session.Controller
	client  *api.Client
	q       *queue
	m       *Model
}

func newFixture(t *testing.T, b *fakeBackend, mods ...module.Descriptor) *fixture {
	t.Helper()
	if b == nil {
		b = &fakeBackend{
			loginStatus: 200, loginBody: `{"ok":true,"token":"abc"}`,
			meStatus: 200, meBody: pharmacistMe,
		}
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	store := prefs.NewMemoryStore()
	sess := session.New(store, nil)
	client, err := api.NewClient(srv.URL, sess)
	require.NoError(t, err)

	reg := registry.New()
	reg.MustRegister(mods...)

	f := &fixture{
		t:       t,
		backend: b,
		store:   store,
		reg:     reg,
		ctrl:    session.NewController(sess, client, nil),
		client:  client,
		q:       &queue{},
	}
	f.m = NewModel(Deps{
		Registry:   reg,
		Controller: f.ctrl,
		API:        client,
		Prefs:      store,
		Brand:      "pharmdesk",
		Version:    "vtest",
		Notify:     f.q.push,
	})
	t.Cleanup(f.m.Close)
	f.update(tea.WindowSizeMsg{Width: 200, Height: 50})
	return f
}

func (f *fixture) update(msg tea.Msg) tea.Cmd {
	_, cmd := f.m.Update(msg)
	return cmd
}

// pump applies queued notifications until none are left. Returned commands
// are not run.
func (f *fixture) pump() {
	for i := 0; i < 10; i++ {
		msgs := f.q.take()
		if len(msgs) == 0 {
			return
		}
		for _, msg := range msgs {
			f.update(msg)
		}
	}
}

func (f *fixture) boot() {
	f.update(f.m.bootCmd())
	f.pump()
}

// signIn persists a token and boots straight into the app.
func (f *fixture) signIn() {
	f.t.Helper()
	f.store.Set(prefs.KeyToken, "abc")
	f.boot()
	require.Equal(f.t, screenApp, f.m.screen)
}

func (f *fixture) press(keys ...string) {
	for _, k := range keys {
		f.update(keyMsg(k))
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "ctrl+b":
		return tea.KeyMsg{Type: tea.KeyCtrlB}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// probe is a module that records its lifecycle.
type probe struct {
	id       string
	mounts   int
	unmounts int
	keys     []string
	env      *module.Env
	region   module.Container
}

func (p *probe) descriptor() module.Descriptor {
	return module.Descriptor{
		ID:       p.id,
		Title:    "Title " + p.id,
		NavLabel: "nav-" + p.id,
		Mount: func(c module.Container, env *module.Env) (module.Handle, error) {
			p.mounts++
			p.env, p.region = env, c
			c.SetContent(fmt.Sprintf("%s output", p.id))
			return p, nil
		},
	}
}

func (p *probe) Unmount() { p.unmounts++ }

func (p *probe) HandleKey(key string) bool {
	p.keys = append(p.keys, key)
	return true
}

func failing(id string, fail func() error) module.Descriptor {
	return module.Descriptor{
		ID:    id,
		Title: "Title " + id,
		Mount: func(c module.Container, env *module.Env) (module.Handle, error) {
			c.SetContent("half drawn")
			return nil, fail()
		},
	}
}
