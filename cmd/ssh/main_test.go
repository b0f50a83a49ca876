package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserFile(t *testing.T) {
	assert.Equal(t, "ann", userFile("ann"))
	assert.Equal(t, "a_b_c", userFile("a/b.c"))
	assert.Equal(t, "___", userFile("../"))
	assert.Equal(t, "anonymous", userFile(""))
}

func TestSizeTracker(t *testing.T) {
	s := newSizeTracker(80, 24)
	s.update(120, 40)
	w, h, err := s.getSize()
	assert.NoError(t, err)
	assert.Equal(t, 120, w)
	assert.Equal(t, 40, h)
}
