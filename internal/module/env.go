package module

import (
	"context"
	"encoding/json"
	"html"

	"github.com/dmitrijs2005/pharmdesk/internal/api"
	"github.com/dmitrijs2005/pharmdesk/internal/session"
	"github.com/dmitrijs2005/pharmdesk/internal/timex"
)

// Requester issues backend calls. *api.Client implements it.
type Requester interface {
	Request(ctx context.Context, path string, opts *api.Options) (json.RawMessage, error)
	Get(ctx context.Context, path string) (json.RawMessage, error)
}

// EnvParams are the shell-side hooks an Env is built from.
type EnvParams struct {
	// Context ends when the mount ends. Defaults to context.Background.
	Context  context.Context
	API      Requester
	User     session.User
	SetTitle func(title, subtitle string)
	Toast    func(msg string)
	Clock    timex.Clock
}

// Env is the context object a module receives on mount.
//
// Everything that writes back into the shell becomes a no-op once the mount
// is over, so late responses from a previous module cannot touch the
// current one.
type Env struct {
	API  Requester
	User session.User

	ctx      context.Context
	setTitle func(title, subtitle string)
	toast    func(msg string)
	clock    timex.Clock
}

func NewEnv(p EnvParams) *Env {
	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Env{
		API:      p.API,
		User:     p.User,
		ctx:      ctx,
		setTitle: p.SetTitle,
		toast:    p.Toast,
		clock:    p.Clock,
	}
}

// Context is cancelled when the module is unmounted.
func (e *Env) Context() context.Context { return e.ctx }

// Active reports whether the mount is still current.
func (e *Env) Active() bool { return e.ctx.Err() == nil }

// Request calls the backend with the mount's context, so the call is
// aborted when the module goes away. A 401 still logs the user out.
func (e *Env) Request(path string, opts *api.Options) (json.RawMessage, error) {
	return e.API.Request(e.ctx, path, opts)
}

// Get is Request with the GET method.
func (e *Env) Get(path string) (json.RawMessage, error) {
	return e.API.Get(e.ctx, path)
}

// SetTitle updates the topbar.
func (e *Env) SetTitle(title, subtitle string) {
	if e.setTitle == nil || !e.Active() {
		return
	}
	e.setTitle(title, subtitle)
}

// Toast shows a transient notification.
func (e *Env) Toast(msg string) {
	if e.toast == nil || !e.Active() {
		return
	}
	e.toast(msg)
}

// Escape makes s safe to embed in HTML, e.g. in exported print views.
func (e *Env) Escape(s string) string { return html.EscapeString(s) }

// TodayYMD returns the local date as YYYY-MM-DD.
func (e *Env) TodayYMD() string { return e.clock.TodayYMD() }

// CurrentYM returns the local year-month as YYYY-MM.
func (e *Env) CurrentYM() string { return e.clock.CurrentYM() }

// AddMonths shifts a YYYY-MM value by delta months.
func (e *Env) AddMonths(ym string, delta int) (string, error) {
	return timex.AddMonths(ym, delta)
}

func (e *Env) FormatYMLabel(ym string) string { return timex.FormatYMLabel(ym) }
