package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type remoteErr struct {
	code int
}

func (r *remoteErr) Error() string   { return fmt.Sprintf("remote status %d", r.code) }
func (r *remoteErr) StatusCode() int { return r.code }

func TestError(t *testing.T) {
	t.Run("derivation", func(t *testing.T) {
		ErrBase := New("base error")
		assert.Equal(t, "base error", ErrBase.Error())
		assert.ErrorIs(t, ErrBase, ErrBase)

		ErrChild := ErrBase.New("child")
		assert.Equal(t, "child", ErrChild.Error())
		assert.ErrorIs(t, ErrChild, ErrBase)
		assert.NotErrorIs(t, ErrBase, ErrChild)
	})

	t.Run("attached causes", func(t *testing.T) {
		ErrKind := New("upload failed")
		ErrOther := New("other kind")
		cause := errors.New("connection refused")

		err := ErrKind.Err(cause, ErrOther.Msg("other msg"))
		assert.Equal(t, "upload failed", err.Error())
		assert.ErrorIs(t, err, ErrKind)
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, ErrOther)
		assert.Len(t, err.Causes(), 2)
		assert.Equal(t, "upload failed: connection refused: other msg", err.ErrorAll())
	})

	t.Run("msg keeps kind", func(t *testing.T) {
		ErrKind := New("create failed")
		err := ErrKind.MsgErr("create failed for A-1", fmt.Errorf("boom"))
		assert.Equal(t, "create failed for A-1", err.Error())
		assert.Equal(t, "create failed for A-1: boom", err.ErrorAll())
		assert.ErrorIs(t, err, ErrKind)
	})

	t.Run("status code", func(t *testing.T) {
		ErrKind := New("fetch failed")
		assert.Equal(t, 0, ErrKind.StatusCode())
		assert.Equal(t, http.StatusBadGateway, ErrKind.SetStatusCode(http.StatusBadGateway).StatusCode())
		assert.Equal(t, 0, ErrKind.StatusCode())

		err := ErrKind.Err(errors.Wrap(&remoteErr{code: http.StatusNotFound}, "listing"))
		assert.Equal(t, http.StatusNotFound, err.StatusCode())
	})

	t.Run("nil causes are dropped", func(t *testing.T) {
		err := New("kind").Err(nil)
		assert.Empty(t, err.Causes())
		assert.False(t, errors.Is(err, nil))
	})
}
