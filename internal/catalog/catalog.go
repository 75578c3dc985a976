// Package catalog loads the ordered deck of items voters react to.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vbonduro/brandswipe/internal/domain"
)

var (
	ErrNotFound      = errors.New("catalog not found")
	ErrMissingColumn = errors.New("catalog is missing a required column")
	ErrEmpty         = errors.New("catalog is empty")
	ErrInvalidRow    = errors.New("catalog row is invalid")
	ErrDuplicateID   = errors.New("catalog has a duplicate id")
)

// SetupHelp is shown to the operator when the catalog cannot be loaded.
const SetupHelp = `Create a CSV catalog with this format:

id,url,label
img_001,https://example.com/image1.jpg,Abstract gradient
img_002,images/local_image.png,Local brand concept`

var videoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
}

// Catalog is the read-only, ordered item deck.
type Catalog struct {
	items    []domain.Item
	byID     map[string]int
	mediaDir string
}

// Load reads the catalog CSV at path. Relative item locations resolve under mediaDir.
func Load(path, mediaDir string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	c, err := Parse(f, mediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return c, nil
}

// Parse reads a catalog from r. The header must name an id column and a url
// (or location) column; label is optional.
func Parse(r io.Reader, mediaDir string) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idCol, locCol, labelCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case "id":
			idCol = i
		case "url", "location":
			if locCol < 0 {
				locCol = i
			}
		case "label":
			labelCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("%w: id", ErrMissingColumn)
	}
	if locCol < 0 {
		return nil, fmt.Errorf("%w: url", ErrMissingColumn)
	}

	c := &Catalog{byID: make(map[string]int), mediaDir: mediaDir}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}

		item := domain.Item{
			ID:       field(record, idCol),
			Location: field(record, locCol),
			Label:    field(record, labelCol),
		}
		if item.ID == "" {
			return nil, fmt.Errorf("%w: line %d has an empty id", ErrInvalidRow, line)
		}
		if item.Location == "" {
			return nil, fmt.Errorf("%w: line %d (%s) has an empty url", ErrInvalidRow, line, item.ID)
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("%w: %s (line %d)", ErrDuplicateID, item.ID, line)
		}

		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}

	if len(c.items) == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// Items returns the deck in file order. The slice must not be modified.
func (c *Catalog) Items() []domain.Item {
	return c.items
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// At returns the item at position i of the deck.
func (c *Catalog) At(i int) (domain.Item, bool) {
	if i < 0 || i >= len(c.items) {
		return domain.Item{}, false
	}
	return c.items[i], true
}

func (c *Catalog) Get(id string) (domain.Item, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Item{}, false
	}
	return c.items[i], true
}

// Resolve returns the item's URL as-is, or its location as a path under the
// media directory.
func (c *Catalog) Resolve(item domain.Item) string {
	if IsURL(item.Location) {
		return item.Location
	}
	if c.mediaDir == "" || hasDirPrefix(item.Location, c.mediaDir) {
		return item.Location
	}
	return filepath.Join(c.mediaDir, item.Location)
}

// MediaKey returns the location relative to the media directory for local
// items, and false for URLs.
func (c *Catalog) MediaKey(item domain.Item) (string, bool) {
	if IsURL(item.Location) {
		return "", false
	}
	loc := filepath.ToSlash(item.Location)
	if c.mediaDir != "" && hasDirPrefix(item.Location, c.mediaDir) {
		loc = strings.TrimPrefix(strings.TrimPrefix(loc, filepath.ToSlash(filepath.Clean(c.mediaDir))), "/")
	}
	return loc, true
}

func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// IsVideo reports whether the location names a video clip.
func IsVideo(location string) bool {
	if i := strings.IndexAny(location, "?#"); i >= 0 && IsURL(location) {
		location = location[:i]
	}
	return videoExts[strings.ToLower(filepath.Ext(location))]
}

func hasDirPrefix(location, dir string) bool {
	dir = filepath.ToSlash(filepath.Clean(dir))
	loc := filepath.ToSlash(location)
	return loc == dir || strings.HasPrefix(loc, dir+"/")
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
