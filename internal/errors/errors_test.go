package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srlehn/drmswap/internal/errors"
)

func TestKind(t *testing.T) {
	base := errors.New(`ioctl failed`)
	err := errors.Kind(errors.ErrResource, base)
	assert.True(t, errors.Is(err, errors.ErrResource))
	assert.True(t, errors.Is(err, base))
	assert.False(t, errors.Is(err, errors.ErrConfig))
	assert.Equal(t, `resource creation error: ioctl failed`, err.Error())

	assert.Nil(t, errors.Kind(errors.ErrResource, nil))
	assert.Same(t, errors.Kind(errors.ErrResource, err).(*errors.Error), err.(*errors.Error))

	wrapped := errors.Kind(errors.ErrPresent, err)
	assert.True(t, errors.Is(wrapped, errors.ErrPresent))
	assert.True(t, errors.Is(wrapped, errors.ErrResource))
}

func TestSplit(t *testing.T) {
	a, b := errors.New(`a`), errors.Kindf(errors.ErrRender, `b`)
	assert.Equal(t, []error{a, b}, errors.Split(errors.Join(a, nil, b)))
	assert.Equal(t, []error{b}, errors.Split(b))
	assert.Nil(t, errors.Split(nil))
}

func TestNilChecks(t *testing.T) {
	assert.Error(t, errors.NilParam())
	assert.Error(t, errors.NilParam(1, nil))
	assert.NoError(t, errors.NilParam(1, `x`))
	assert.Contains(t, errors.NilReceiver().Error(), `TestNilChecks`)
}
