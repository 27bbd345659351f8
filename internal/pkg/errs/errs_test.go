package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = errors.New("sentinel")

func TestMark(t *testing.T) {
	base := errors.New("dial tcp: i/o timeout")
	marked := Mark(base, errSentinel)

	assert.True(t, Is(marked, errSentinel))
	assert.Contains(t, marked.Error(), "i/o timeout")

	wrapped := fmt.Errorf("geocode %q: %w", "Moscow", marked)
	assert.True(t, Is(wrapped, errSentinel))
}

func TestMarkNil(t *testing.T) {
	assert.Equal(t, errSentinel, Mark(nil, errSentinel))
	assert.Nil(t, Wrap(nil, "ignored"))
}
