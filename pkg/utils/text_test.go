package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNonBlank(t *testing.T) {
	assert.Equal(t, "nick", FirstNonBlank("nick", "name", "익명"))
	assert.Equal(t, "name", FirstNonBlank("  ", "name", "익명"))
	assert.Equal(t, "익명", FirstNonBlank("", "\t", "익명"))
	assert.Equal(t, "", FirstNonBlank())
}

func TestDeref(t *testing.T) {
	s := "x"
	assert.Equal(t, "x", Deref(&s))
	assert.Equal(t, "", Deref(nil))
}
