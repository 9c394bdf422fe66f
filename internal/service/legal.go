package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/templui/gallery/internal/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrPageNotFound = errors.New("page not found")

const legalDateFormat = "January 2, 2006"

// front matter dates are accepted in any of these layouts
var legalDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02.01.2006",
	"01/02/2006",
	"Jan 2, 2006",
	legalDateFormat,
	time.RFC3339,
}

type LegalPage struct {
	Title       string
	Slug        string
	Content     string
	LastUpdated string
}

// LegalService serves the markdown pages under CONTENT_PATH/legal, such as
// the upload terms. With reload set every lookup rereads the directory so
// edits show up without a restart.
type LegalService struct {
	dir    string
	reload bool
	parser *markdown.Parser

	mu    sync.RWMutex
	pages map[string]*LegalPage
}

func NewLegalService(contentDir string, reload bool) *LegalService {
	return &LegalService{
		dir:    filepath.Join(contentDir, "legal"),
		reload: reload,
		parser: markdown.NewParser(),
		pages:  make(map[string]*LegalPage),
	}
}

// LoadPages replaces the page set with the directory's *.md files. A
// missing directory leaves the gallery without legal pages.
func (s *LegalService) LoadPages() error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read legal directory: %w", err)
	}

	pages := make(map[string]*LegalPage, len(entries))
	for _, entry := range entries {
		slug, ok := strings.CutSuffix(entry.Name(), ".md")
		if entry.IsDir() || !ok {
			continue
		}

		page, err := s.readPage(slug)
		if err != nil {
			return fmt.Errorf("failed to load page %s: %w", slug, err)
		}
		pages[slug] = page
	}

	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()

	return nil
}

func (s *LegalService) readPage(slug string) (*LegalPage, error) {
	path := filepath.Join(s.dir, slug+".md")

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	html, meta, err := s.parser.Render(source)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	page := &LegalPage{
		Slug:        slug,
		Content:     string(html),
		LastUpdated: parseDate(meta["lastUpdated"]),
	}

	page.Title, _ = meta["title"].(string)
	if page.Title == "" {
		// Casers are stateful, so each page gets its own
		page.Title = cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
	}

	if page.LastUpdated == "" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		page.LastUpdated = info.ModTime().Format(legalDateFormat)
	}

	return page, nil
}

func (s *LegalService) Page(slug string) (*LegalPage, error) {
	if s.reload {
		if err := s.LoadPages(); err != nil {
			return nil, err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	page, ok := s.pages[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, slug)
	}
	return page, nil
}

// parseDate formats a front matter date for display. Unparseable strings
// are shown as written.
func parseDate(value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format(legalDateFormat)
	case string:
		for _, layout := range legalDateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t.Format(legalDateFormat)
			}
		}
		return v
	default:
		return ""
	}
}
