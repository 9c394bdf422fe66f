package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/templui/gallery/internal/model"
)

func TestFindOrphans(t *testing.T) {
	keys := []string{"3-c.png", "1-a.png", "2-b.png"}
	known := map[string]bool{"1-a.png": true}

	assert.Equal(t, []string{"2-b.png", "3-c.png"}, findOrphans(keys, known))
	assert.Empty(t, findOrphans([]string{"1-a.png"}, known))
	assert.Empty(t, findOrphans(nil, known))
}

func TestImageRows(t *testing.T) {
	owner := "user-1"
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := imageRows([]*model.Image{
		{StorageKey: "2-b.png", URL: "https://cdn/2-b.png", UserID: &owner, CreatedAt: created},
		{StorageKey: "1-a.png", URL: "https://cdn/1-a.png", CreatedAt: created},
	})

	assert.Len(t, rows, 2)
	assert.Equal(t, []string{"user-1", "2-b.png", "https://cdn/2-b.png"}, rows[0][1:])
	assert.Equal(t, "anonymous", rows[1][1])
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Key"}, [][]string{{"1-a.png"}})
	assert.Contains(t, out, "Key")
	assert.Contains(t, out, "1-a.png")
}
