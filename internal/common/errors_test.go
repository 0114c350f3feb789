package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindUnknown},
		{"plain error", errors.New("x"), KindUnknown},
		{"missing origin", ErrMissingOrigin, KindConfig},
		{"no session", ErrNoSession, KindNoSession},
		{"no session behind a typed error", NewError(KindAuthentication, ErrNoSession), KindAuthentication},
		{"wrapped unauthorized", fmt.Errorf("call: %w", ErrUnauthorized), KindUnauthorized},
		{"login failed", ErrLoginFailed, KindAuthentication},
		{"session check failed", ErrSessionCheckFailed, KindAuthentication},
		{"typed server error", &Error{Kind: KindServer, Status: 500, Msg: "HTTP 500"}, KindServer},
		{"typed error wrapped", fmt.Errorf("outer: %w", NewError(KindTransport, errors.New("dial"))), KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestError_MessageAndUnwrap(t *testing.T) {
	e := &Error{Kind: KindUnauthorized, Status: 401, Err: ErrUnauthorized}
	assert.Equal(t, "Unauthorized", e.Error())
	assert.ErrorIs(t, e, ErrUnauthorized)

	e2 := Errorf(KindServer, "HTTP %d", 503)
	assert.Equal(t, "HTTP 503", e2.Error())
	assert.Nil(t, errors.Unwrap(e2))

	e3 := &Error{Kind: KindModule}
	assert.Equal(t, "module error", e3.Error())
}
