package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayNameEqual(t *testing.T) {
	assert.True(t, DisplayNameEqual("Ada", "ada"))
	assert.True(t, DisplayNameEqual("  Grace Hopper ", "grace hopper"))
	assert.False(t, DisplayNameEqual("Ada", "Grace"))
	assert.False(t, DisplayNameEqual("", "Ada"))
	assert.True(t, DisplayNameEqual(" ", ""))
}
