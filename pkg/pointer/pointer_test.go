package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointer(t *testing.T) {
	value := uint64(42)

	p := To(value)
	value++
	assert.EqualValues(t, 42, *p)

	assert.Nil(t, IfValid(false, "a"))
	assert.Equal(t, "a", *IfValid(true, "a"))

	copied := Copy(p)
	*copied = 1
	assert.EqualValues(t, 42, *p)
	assert.Nil(t, Copy[bool](nil))
}
