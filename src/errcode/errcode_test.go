package errcode

import (
	"errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseErr(t *testing.T) {
	assert.Nil(t, ParseErr(nil))

	wrapped := pkgerrors.Wrap(NewConflictErr("item already sold"), "sale agent")
	e := ParseErr(wrapped)
	assert.Equal(t, http.StatusConflict, e.HTTPStatus)
	assert.Equal(t, "item already sold", e.Msg)

	assert.Equal(t, ErrUnexpected, ParseErr(errors.New("plain")))
}

func TestErrIsMatchesByCode(t *testing.T) {
	err := pkgerrors.Wrap(NewNotFoundErr("collection %s", "frogs"), "lookup")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "collection frogs", ParseErr(err).Msg)
}
