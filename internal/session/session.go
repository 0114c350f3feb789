// Package session owns the signed-in user: the bearer token, the profile
// snapshot and the Anonymous -> Validating -> Authenticated state machine.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/pharmdesk/internal/common"
	"github.com/dmitrijs2005/pharmdesk/internal/logging"
	"github.com/dmitrijs2005/pharmdesk/internal/prefs"
)

// ErrNoSession is returned by Boot when no token was persisted.
var ErrNoSession = common.ErrNoSession

type State int

const (
	Anonymous State = iota
	Validating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// EndReason tells listeners why a session ended.
type EndReason int

const (
	// Logout is a user-requested sign out.
	Logout EndReason = iota
	// Expired is a 401 from the backend.
	Expired
	// Invalid is a token that failed validation at boot or after login.
	Invalid
)

func (r EndReason) String() string {
	switch r {
	case Expired:
		return "expired"
	case Invalid:
		return "invalid"
	default:
		return "logout"
	}
}

// Session is safe for concurrent use. The api client calls Invalidate from
// whatever goroutine received the 401.
type Session struct {
	mu     sync.Mutex
	state  State
	token  string
	user   *User
	store  *prefs.Store
	logger logging.Logger

	listeners map[int]func(EndReason)
	nextID    int
}

func New(store *prefs.Store, logger logging.Logger) *Session {
	if store == nil {
		store = prefs.NewMemoryStore()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{
		store:     store,
		logger:    logger,
		listeners: make(map[int]func(EndReason)),
	}
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the validated user, or false while not authenticated.
func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// OnEnd registers fn to run after every transition to Anonymous. fn runs on
// the goroutine that ended the session and must not block.
func (s *Session) OnEnd(fn func(EndReason)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Invalidate ends the session after a 401. Only the first of several
// concurrent calls has any effect.
func (s *Session) Invalidate() {
	s.End(Expired)
}

// End clears token, user and the persisted token, then notifies listeners.
// It reports whether there was anything to end; ending an anonymous
// session is a no-op.
func (s *Session) End(reason EndReason) bool {
	s.mu.Lock()
	if s.state == Anonymous && s.token == "" {
		s.mu.Unlock()
		return false
	}
	s.state = Anonymous
	s.token = ""
	s.user = nil
	s.store.Remove(prefs.KeyToken)

	fns := make([]func(EndReason), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	s.logger.Info(context.Background(), "session ended", "reason", reason.String())
	for _, fn := range fns {
		fn(reason)
	}
	return true
}

// persisted returns the token saved by a previous run.
func (s *Session) persisted() string {
	tok, _ := s.store.Get(prefs.KeyToken)
	return tok
}

// begin enters Validating with token. persist saves it for the next run.
func (s *Session) begin(token string, persist bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Validating
	s.token = token
	s.user = nil
	if persist {
		s.store.Set(prefs.KeyToken, token)
	}
}

// authenticate completes validation. It fails when the session was ended
// or replaced while the check was in flight.
func (s *Session) authenticate(token string, u User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Validating || s.token != token {
		return false
	}
	s.state = Authenticated
	s.user = &u
	return true
}
