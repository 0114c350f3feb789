package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dmitrijs2005/pharmdesk/internal/api"
	"github.com/dmitrijs2005/pharmdesk/internal/common"
	"github.com/dmitrijs2005/pharmdesk/internal/logging"
)

const (
	pathLogin = "/auth/login"
	pathMe    = "/auth/me"
)

// Requester is the slice of *api.Client the controller uses.
type Requester interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

// Controller drives boot, login and logout against the backend.
type Controller struct {
	session *Session
	api     Requester
	logger  logging.Logger
}

func NewController(s *Session, client Requester, logger logging.Logger) *Controller {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Controller{session: s, api: client, logger: logger}
}

func (c *Controller) Session() *Session { return c.session }

// Boot validates the persisted token with one /auth/me call. Without a
// token it returns ErrNoSession and makes no request. Any validation
// failure ends the session and clears the persisted token.
func (c *Controller) Boot(ctx context.Context) (User, error) {
	token := c.session.persisted()
	if token == "" {
		return User{}, ErrNoSession
	}

	c.session.begin(token, false)
	u, err := c.whoAmI(ctx)
	if err == nil && !c.session.authenticate(token, u) {
		err = common.NewError(common.KindAuthentication, ErrNoSession)
	}
	if err != nil {
		c.session.End(Invalid)
		c.logger.Info(ctx, "stored session rejected", "error", err)
		return User{}, err
	}

	c.logger.Info(ctx, "session restored", "email", u.Email, "role", u.Role)
	return u, nil
}

// Login exchanges credentials for a token, then validates it the same way
// Boot does. The login response's own user payload is ignored.
func (c *Controller) Login(ctx context.Context, email, password string) (User, error) {
	raw, err := c.api.Post(ctx, pathLogin, map[string]string{"email": email, "password": password})
	if err != nil {
		c.logger.Info(ctx, "login rejected", "email", email, "error", err)
		return User{}, loginError(err)
	}

	res := gjson.ParseBytes(raw)
	token := res.Get("token")
	if !res.Get("ok").Bool() || token.Type != gjson.String || token.Str == "" {
		c.logger.Info(ctx, "login response without token", "email", email)
		return User{}, common.NewError(common.KindAuthentication, common.ErrLoginFailed)
	}

	c.session.begin(token.Str, true)
	u, err := c.whoAmI(ctx)
	if err == nil && !c.session.authenticate(token.Str, u) {
		err = ErrNoSession
	}
	if err != nil {
		c.session.End(Invalid)
		c.logger.Warn(ctx, "session check after login failed", "email", email, "error", err)
		return User{}, &common.Error{Kind: common.KindAuthentication, Err: common.ErrSessionCheckFailed}
	}

	c.logger.Info(ctx, "logged in", "email", u.Email, "role", u.Role)
	return u, nil
}

// Logout ends the session. Calling it while anonymous is a no-op.
func (c *Controller) Logout(ctx context.Context) {
	if c.session.End(Logout) {
		c.logger.Info(ctx, "logged out")
	}
}

type meResponse struct {
	OK   bool  `json:"ok"`
	User *User `json:"user"`
}

func (c *Controller) whoAmI(ctx context.Context) (User, error) {
	raw, err := c.api.Get(ctx, pathMe)
	if err != nil {
		return User{}, err
	}
	res, err := api.Decode[meResponse](raw)
	if err != nil {
		return User{}, fmt.Errorf("/auth/me: %w", err)
	}
	if !res.OK || res.User == nil {
		return User{}, errors.New("malformed /auth/me response")
	}
	return *res.User, nil
}

// loginError keeps the server's message for the form. A 401 from the login
// endpoint means bad credentials, not an expired session.
func loginError(err error) error {
	var e *common.Error
	if errors.As(err, &e) {
		if e.Kind == common.KindUnauthorized {
			return &common.Error{Kind: common.KindAuthentication, Status: e.Status, Err: common.ErrLoginFailed}
		}
		return &common.Error{Kind: common.KindAuthentication, Status: e.Status, Msg: e.Error(), Err: err}
	}
	return &common.Error{Kind: common.KindAuthentication, Msg: err.Error(), Err: err}
}
