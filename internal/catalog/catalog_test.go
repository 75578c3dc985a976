package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,url,label
img_001,https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?w=800,Abstract gradient
img_002, https://images.unsplash.com/photo-1557683316-973673baf926?w=800 ,Vibrant colors
img_003,local_image.png,
clip_001,images/intro.mp4,Intro clip
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV), "images")
	require.NoError(t, err)
	require.Equal(t, 4, c.Len())

	items := c.Items()
	assert.Equal(t, "img_001", items[0].ID)
	assert.Equal(t, "Abstract gradient", items[0].Label)
	assert.Equal(t, "https://images.unsplash.com/photo-1557683316-973673baf926?w=800", items[1].Location, "cells are trimmed")
	assert.Equal(t, "", items[2].Label)
	assert.Equal(t, "img_003", items[2].DisplayName())
}

func TestParse_LabelColumnOptional(t *testing.T) {
	c, err := Parse(strings.NewReader("id,url\na,a.png\nb,b.png\n"), "images")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Empty(t, c.Items()[0].Label)
}

func TestParse_LocationAlias(t *testing.T) {
	c, err := Parse(strings.NewReader("label,location,id\nFirst,a.png,a\n"), "")
	require.NoError(t, err)
	item, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a.png", item.Location)
	assert.Equal(t, "First", item.Label)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "no content", input: "", wantErr: ErrEmpty},
		{name: "header only", input: "id,url,label\n", wantErr: ErrEmpty},
		{name: "missing id column", input: "name,url\na,a.png\n", wantErr: ErrMissingColumn},
		{name: "missing url column", input: "id,label\na,First\n", wantErr: ErrMissingColumn},
		{name: "empty id", input: "id,url\n,a.png\n", wantErr: ErrInvalidRow},
		{name: "empty url", input: "id,url\na,\n", wantErr: ErrInvalidRow},
		{name: "duplicate id", input: "id,url\na,a.png\na,b.png\n", wantErr: ErrDuplicateID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input), "images")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	c, err := Load(path, "images")
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), "images")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_WrapsParseErrorWithPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,label\n"), 0o600))

	_, err := Load(path, "images")
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), path)
}

func TestAtAndGet(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV), "images")
	require.NoError(t, err)

	item, ok := c.At(3)
	require.True(t, ok)
	assert.Equal(t, "clip_001", item.ID)

	_, ok = c.At(4)
	assert.False(t, ok)
	_, ok = c.At(-1)
	assert.False(t, ok)

	_, ok = c.Get("img_404")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV), "images")
	require.NoError(t, err)

	byID := func(id string) string {
		item, ok := c.Get(id)
		require.True(t, ok)
		return c.Resolve(item)
	}

	assert.Equal(t, "https://images.unsplash.com/photo-1618005182384-a83a8bd57fbe?w=800", byID("img_001"))
	assert.Equal(t, filepath.Join("images", "local_image.png"), byID("img_003"))
	assert.Equal(t, "images/intro.mp4", byID("clip_001"), "already under the media dir")
}

func TestMediaKey(t *testing.T) {
	c, err := Parse(strings.NewReader(sampleCSV), "images")
	require.NoError(t, err)

	item, _ := c.Get("img_001")
	_, ok := c.MediaKey(item)
	assert.False(t, ok)

	item, _ = c.Get("img_003")
	key, ok := c.MediaKey(item)
	require.True(t, ok)
	assert.Equal(t, "local_image.png", key)

	item, _ = c.Get("clip_001")
	key, ok = c.MediaKey(item)
	require.True(t, ok)
	assert.Equal(t, "intro.mp4", key)
}

func TestIsVideo(t *testing.T) {
	assert.True(t, IsVideo("images/intro.mp4"))
	assert.True(t, IsVideo("clip.MOV"))
	assert.True(t, IsVideo("https://cdn.example.com/a.webm?token=1"))
	assert.False(t, IsVideo("images/a.png"))
	assert.False(t, IsVideo("https://images.unsplash.com/photo-1?w=800"))
}
