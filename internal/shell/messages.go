package shell

import (
	"github.com/dmitrijs2005/pharmdesk/internal/session"
)

// Messages delivered to Model.Update. Those marked off-loop may be sent
// from any goroutine through the notifier.

type bootMsg struct {
	user session.User
	err  error
}

type loginMsg struct {
	user session.User
	err  error
}

// off-loop
type sessionEndedMsg struct {
	reason session.EndReason
}

// off-loop
type registryChangedMsg struct{}

// off-loop: a module changed its content.
type contentMsg struct {
	gen uint64
}

// off-loop
type setTitleMsg struct {
	gen      uint64
	title    string
	subtitle string
}

// off-loop
type toastMsg struct {
	text string
}

type toastExpiredMsg struct {
	id int
}
