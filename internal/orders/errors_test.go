package orders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFoundf("order %s not found", "x")))
	assert.Equal(t, KindInvalidInput, KindOf(InvalidInputf("bad")))
	assert.Equal(t, KindInvalidState, KindOf(InvalidStatef("bad")))
	assert.Equal(t, KindConflict, KindOf(Conflictf("dup")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("raw storage error")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("create order: %w", NotFoundf("product p1 not found"))
	assert.True(t, IsKind(err, KindNotFound))
	assert.Contains(t, err.Error(), "p1")
}
