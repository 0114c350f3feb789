// Package home is the landing module: a welcome card with a month picker.
package home

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/pharmdesk/internal/module"
)

const ID = "home"

func Descriptor() module.Descriptor {
	return module.Descriptor{
		ID:       ID,
		Title:    "Home",
		NavLabel: "Home",
		Icon:     "⌂",
		Order:    1,
		Mount:    mount,
	}
}

type view struct {
	mu  sync.Mutex
	c   module.Container
	env *module.Env
	ym  string
}

func mount(c module.Container, env *module.Env) (module.Handle, error) {
	v := &view{c: c, env: env, ym: env.CurrentYM()}
	v.render()
	return v, nil
}

func (v *view) Unmount() {}

// HandleKey moves the selected month with [ and ].
func (v *view) HandleKey(key string) bool {
	delta := 0
	switch key {
	case "[", "left", "h":
		delta = -1
	case "]", "right", "l":
		delta = 1
	case "t":
		v.mu.Lock()
		v.ym = v.env.CurrentYM()
		v.mu.Unlock()
		v.render()
		return true
	default:
		return false
	}

	v.mu.Lock()
	next, err := v.env.AddMonths(v.ym, delta)
	if err == nil {
		v.ym = next
	}
	v.mu.Unlock()
	if err != nil {
		v.env.Toast(err.Error())
		return true
	}
	v.render()
	return true
}

func (v *view) render() {
	v.mu.Lock()
	ym := v.ym
	v.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Welcome, %s\n\n", v.env.User.Email)
	fmt.Fprintf(&b, "Today        %s\n", v.env.TodayYMD())
	fmt.Fprintf(&b, "Period       %s (%s)\n", v.env.FormatYMLabel(ym), ym)
	b.WriteString("\n[ ] change period   t this month")
	v.c.SetContent(b.String())
}
