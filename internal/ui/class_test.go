package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass(t *testing.T) {
	assert.Equal(t, "p-3", Class("px-2 py-1", "p-3"))
	assert.Equal(t, "rounded-md bg-red-500", Class("rounded-md bg-gray-900", "bg-red-500"))
	assert.Equal(t, "text-sm", Class("", "text-sm"))
}

func TestButtonClass(t *testing.T) {
	assert.Contains(t, ButtonClass("secondary"), "bg-gray-100")
	assert.Contains(t, ButtonClass("unknown"), "bg-gray-900")

	got := ButtonClass("primary", "px-8")
	assert.Contains(t, got, "px-8")
	assert.NotContains(t, got, "px-4")
}
