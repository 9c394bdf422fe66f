package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAirArgs(t *testing.T) {
	args := airArgs(3000, 3001)

	assert.Equal(t, "air", args[0])
	assert.Contains(t, args, "./tmp/gallery")
	assert.Contains(t, args, "3000")
	assert.Contains(t, args, "3001")
	assert.Contains(t, args, "go,templ,css,js,sql,md")
}
