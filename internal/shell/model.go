package shell

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmitrijs2005/pharmdesk/internal/common"
	"github.com/dmitrijs2005/pharmdesk/internal/logging"
	"github.com/dmitrijs2005/pharmdesk/internal/module"
	"github.com/dmitrijs2005/pharmdesk/internal/prefs"
	"github.com/dmitrijs2005/pharmdesk/internal/registry"
	"github.com/dmitrijs2005/pharmdesk/internal/session"
	"github.com/dmitrijs2005/pharmdesk/internal/timex"
)

const (
	DefaultToastDuration = 2600 * time.Millisecond

	msgSessionExpired = "Session expired, please sign in again"
	msgModuleFailed   = "Module failed to load"
)

type screen int

const (
	screenBoot screen = iota
	screenLogin
	screenApp
)

type focus int

const (
	focusNav focus = iota
	focusContent
)

type toast struct {
	id   int
	text string
}

// Deps are the collaborators of the shell model.
type Deps struct {
	Context    context.Context
	Registry   *registry.Registry
	Controller *session.Controller
	API        module.Requester
	Prefs      *prefs.Store
	Logger     logging.Logger
	Clock      timex.Clock

	Brand         string
	Version       string
	ToastDuration time.Duration

	// Notify delivers a message to the running program. It is called from
	// arbitrary goroutines and must not block.
	Notify func(tea.Msg)
}

// Model is the Bubble Tea model of the whole shell: chrome, login view and
// the module host.
type Model struct {
	ctx      context.Context
	reg      *registry.Registry
	ctrl     *session.Controller
	api      module.Requester
	prefs    *prefs.Store
	logger   logging.Logger
	clock    timex.Clock
	notify   func(tea.Msg)
	host     *Host
	brand    string
	version  string
	toastDur time.Duration

	screen    screen
	user      session.User
	title     string
	subtitle  string
	collapsed bool
	focus     focus
	cursor    int
	login     loginForm
	toast     toast
	toastSeq  int
	width     int
	height    int

	unsubscribe []func()
}

func NewModel(d Deps) *Model {
	m := &Model{
		ctx:      d.Context,
		reg:      d.Registry,
		ctrl:     d.Controller,
		api:      d.API,
		prefs:    d.Prefs,
		logger:   d.Logger,
		clock:    d.Clock,
		notify:   d.Notify,
		brand:    d.Brand,
		version:  d.Version,
		toastDur: d.ToastDuration,
		login:    newLoginForm(),
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.logger == nil {
		m.logger = logging.Nop()
	}
	if m.prefs == nil {
		m.prefs = prefs.NewMemoryStore()
	}
	if m.notify == nil {
		m.notify = func(tea.Msg) {}
	}
	if m.toastDur <= 0 {
		m.toastDur = DefaultToastDuration
	}
	if m.brand == "" {
		m.brand = "pharmdesk"
	}

	m.host = NewHost(m.logger, func(gen uint64) { m.notify(contentMsg{gen: gen}) })
	m.collapsed = m.prefs.Bool(prefs.KeySidebarCollapsed)

	m.unsubscribe = append(m.unsubscribe,
		m.reg.Subscribe(func() { m.notify(registryChangedMsg{}) }),
		m.ctrl.Session().OnEnd(func(r session.EndReason) { m.notify(sessionEndedMsg{reason: r}) }),
	)
	return m
}

// Close detaches the model from the registry and session and unmounts the
// active module.
func (m *Model) Close() {
	for _, fn := range m.unsubscribe {
		fn()
	}
	m.unsubscribe = nil
	m.host.Unmount()
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.bootCmd, m.login.spinner.Tick)
}

func (m *Model) bootCmd() tea.Msg {
	u, err := m.ctrl.Boot(m.ctx)
	return bootMsg{user: u, err: err}
}

func (m *Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		u, err := m.ctrl.Login(m.ctx, email, password)
		return loginMsg{user: u, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.host.Resize(m.contentWidth())
		return m, nil

	case bootMsg:
		if msg.err != nil {
			note := msgSessionExpired
			if common.KindOf(msg.err) == common.KindNoSession {
				note = ""
			}
			m.showLogin(note)
			return m, nil
		}
		m.enterApp(msg.user)
		return m, nil

	case loginMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.err = common.ErrLoginFailed.Error()
			if common.KindOf(msg.err) == common.KindAuthentication {
				m.login.err = msg.err.Error()
			} else {
				m.logger.Warn(m.ctx, "unexpected login error", "kind", common.KindOf(msg.err).String(), "error", msg.err)
			}
			return m, nil
		}
		m.enterApp(msg.user)
		return m, nil

	case sessionEndedMsg:
		// Already on the login form, or a newer session has started since.
		if m.screen == screenLogin || m.ctrl.Session().State() != session.Anonymous {
			return m, nil
		}
		m.host.Unmount()
		if msg.reason == session.Expired {
			m.showLogin(msgSessionExpired)
			return m, m.showToast(msgSessionExpired)
		}
		m.showLogin("")
		return m, nil

	case registryChangedMsg:
		m.clampCursor()
		if m.screen == screenApp {
			if _, ok := m.host.Active(); !ok {
				m.openDefault()
			}
		}
		return m, nil

	case contentMsg:
		return m, nil

	case setTitleMsg:
		if msg.gen == m.host.Generation() {
			m.title, m.subtitle = msg.title, msg.subtitle
		}
		return m, nil

	case toastMsg:
		return m, m.showToast(msg.text)

	case toastExpiredMsg:
		if msg.id == m.toast.id {
			m.toast = toast{}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.screen == screenBoot || m.login.busy {
		var cmd tea.Cmd
		m.login.spinner, cmd = m.login.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.host.Unmount()
		return m, tea.Quit
	}
	switch m.screen {
	case screenLogin:
		return m.handleLoginKey(msg)
	case screenApp:
		return m.handleAppKey(msg)
	}
	return m, nil
}

func (m *Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down":
		m.login.setFocus(m.login.focus + 1)
		return m, nil
	case "shift+tab", "up":
		m.login.setFocus(m.login.focus - 1)
		return m, nil
	case "enter":
		if m.login.focus == fieldEmail {
			m.login.setFocus(fieldPassword)
			return m, nil
		}
		return m, m.submitLogin()
	}
	return m, m.login.update(msg)
}

// submitLogin validates the form and starts the login call. The button
// stays busy until the loginMsg arrives.
func (m *Model) submitLogin() tea.Cmd {
	if note := m.login.validate(); note != "" {
		m.login.err = note
		return nil
	}
	m.login.err = ""
	m.login.busy = true
	return tea.Batch(m.loginCmd(m.login.email(), m.login.password()), m.login.spinner.Tick)
}

func (m *Model) handleAppKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+b":
		m.toggleSidebar()
		return m, nil
	case "ctrl+x":
		m.logout()
		return m, nil
	case "tab":
		if m.focus == focusNav {
			m.focus = focusContent
		} else {
			m.focus = focusNav
		}
		return m, nil
	}

	if m.focus == focusContent {
		if key == "esc" {
			m.focus = focusNav
			return m, nil
		}
		m.host.HandleKey(key)
		return m, nil
	}

	nav := m.navItems()
	switch key {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(nav)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(nav) {
			m.openModule(nav[m.cursor].ID)
		}
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if i := int(key[0] - '1'); i < len(nav) {
			m.openModule(nav[i].ID)
		}
	}
	return m, nil
}

// navItems is the nav list: by Order when any module declares one, by id
// otherwise.
func (m *Model) navItems() []module.Descriptor {
	if m.reg.HasOrder() {
		return m.reg.ListOrdered()
	}
	return m.reg.List()
}

func (m *Model) clampCursor() {
	n := len(m.navItems())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) enterApp(u session.User) {
	m.screen = screenApp
	m.user = u
	m.focus = focusNav
	m.login.reset("")
	m.openDefault()
}

// openDefault opens the last used module, or the first one in the nav.
func (m *Model) openDefault() {
	if last, ok := m.prefs.Get(prefs.KeyLastModule); ok && m.openModule(last) {
		return
	}
	if nav := m.navItems(); len(nav) > 0 {
		m.openModule(nav[0].ID)
		return
	}
	m.title, m.subtitle = "", m.user.Subtitle()
}

// openModule swaps the active module for id. Unknown ids are ignored.
func (m *Model) openModule(id string) bool {
	if id == "" || m.screen != screenApp {
		return false
	}
	d, ok := m.reg.Get(id)
	if !ok {
		return false
	}

	m.host.Unmount()
	m.prefs.Set(prefs.KeyLastModule, id)
	for i, item := range m.navItems() {
		if item.ID == id {
			m.cursor = i
			break
		}
	}
	m.title, m.subtitle = d.Title, m.user.Subtitle()

	if err := m.host.Mount(d, m.newEnv); common.KindOf(err) == common.KindModule {
		m.subtitle = msgModuleFailed
	}
	return true
}

func (m *Model) newEnv(ctx context.Context, gen uint64) *module.Env {
	return module.NewEnv(module.EnvParams{
		Context: ctx,
		API:     m.api,
		User:    m.user,
		SetTitle: func(title, subtitle string) {
			m.notify(setTitleMsg{gen: gen, title: title, subtitle: subtitle})
		},
		Toast: func(text string) { m.notify(toastMsg{text: text}) },
		Clock: m.clock,
	})
}

func (m *Model) logout() {
	m.host.Unmount()
	m.ctrl.Logout(m.ctx)
	m.showLogin("")
}

func (m *Model) showLogin(note string) {
	m.screen = screenLogin
	m.user = session.User{}
	m.title, m.subtitle = "", ""
	m.focus = focusNav
	m.login.reset(note)
}

func (m *Model) toggleSidebar() {
	m.collapsed = !m.collapsed
	m.prefs.SetBool(prefs.KeySidebarCollapsed, m.collapsed)
	m.host.Resize(m.contentWidth())
}

// showToast replaces any visible toast. Expiry of a superseded toast is
// ignored by id.
func (m *Model) showToast(text string) tea.Cmd {
	m.toastSeq++
	id := m.toastSeq
	m.toast = toast{id: id, text: text}
	return tea.Tick(m.toastDur, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m *Model) contentWidth() int {
	w := m.width - m.sidebarWidth() - 3
	if w < 10 {
		return 10
	}
	return w
}

func (m *Model) sidebarWidth() int {
	if m.collapsed {
		return sidebarCollapsedWidth
	}
	return sidebarWidth
}
