package services

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type directoryService struct {
	mu      sync.RWMutex
	records []ShopRecord
	byID    map[int]ShopRecord
	gen     uint64
	loaded  bool
	nextSub int
	subs    map[int]func(DirectorySnapshot)
}

// NewDirectoryService constructs an empty in-memory directory. The record set
// stays empty until the first Replace.
func NewDirectoryService() DirectoryService {
	return &directoryService{
		byID: make(map[int]ShopRecord),
		subs: make(map[int]func(DirectorySnapshot)),
	}
}

func (s *directoryService) Replace(records []ShopRecord) {
	copied := make([]ShopRecord, len(records))
	copy(copied, records)
	index := make(map[int]ShopRecord, len(copied))
	for _, rec := range copied {
		index[rec.ID] = rec
	}

	s.mu.Lock()
	s.records = copied
	s.byID = index
	s.gen++
	s.loaded = true
	snapshot := DirectorySnapshot{Records: s.records, Generation: s.gen}
	subs := make([]func(DirectorySnapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *directoryService) Snapshot() DirectorySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DirectorySnapshot{Records: s.records, Generation: s.gen}
}

func (s *directoryService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *directoryService) Get(id int) (ShopRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	return rec, ok
}

func (s *directoryService) Subscribe(fn func(DirectorySnapshot)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// FilterShops returns the records whose name, city, or any tag contains the
// query as a case- and accent-insensitive substring. An empty or whitespace
// query returns every record unchanged; relative order is always preserved.
func FilterShops(records []ShopRecord, query string) []ShopRecord {
	needle := foldSearch(strings.TrimSpace(query))
	if needle == "" {
		return records
	}

	filtered := make([]ShopRecord, 0, len(records))
	for _, rec := range records {
		if shopMatches(rec, needle) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

func shopMatches(rec ShopRecord, needle string) bool {
	if strings.Contains(foldSearch(rec.Name), needle) {
		return true
	}
	if strings.Contains(foldSearch(rec.City), needle) {
		return true
	}
	for _, tag := range rec.Tags {
		if strings.Contains(foldSearch(tag), needle) {
			return true
		}
	}
	return false
}

var searchFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldSearch lowercases and strips diacritics so "Rétro" matches "retro".
func foldSearch(s string) string {
	folded, _, err := transform.String(searchFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}
