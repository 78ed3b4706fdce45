package careers

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrCorpusNotFound means no corpus file exists at the configured or
	// fallback location. The service cannot recommend anything without one.
	ErrCorpusNotFound = errors.New("corpus source not found")
	// ErrAmbiguousCorpus means the document is not one of the accepted shapes.
	ErrAmbiguousCorpus = errors.New("ambiguous corpus shape")
)

const (
	corpusListKey   = "careers"
	searchSeparator = " . "
)

// corpusShape tags how the top level of a corpus document is organised.
type corpusShape int

const (
	// shapeList is a bare array, or an object carrying the array under "careers".
	shapeList corpusShape = iota
	// shapeMapping is an object keyed by entity id.
	shapeMapping
)

// rawEntry is one top-level element before normalisation. Key is set for
// mapping-shaped documents only.
type rawEntry struct {
	Key   string
	Value any
}

// ResolveCorpusPath returns primary when it exists, otherwise fallback.
func ResolveCorpusPath(primary, fallback string) (string, error) {
	for _, candidate := range []string{primary, fallback} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat corpus %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("%w: tried %q and %q", ErrCorpusNotFound, primary, fallback)
}

// ReadCorpus reads and normalises the corpus file at path.
func ReadCorpus(path string) ([]CareerEntity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	entities, err := ParseCorpus(data)
	if err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return entities, nil
}

// ParseCorpus normalises a corpus document into canonical entities, keeping
// document order. Malformed individual entries are coerced into minimal
// entities and repeated ids get a unique index suffix; a document whose overall
// shape cannot be classified is rejected.
func ParseCorpus(data []byte) ([]CareerEntity, error) {
	shape, entries, err := decodeCorpus(data)
	if err != nil {
		return nil, err
	}
	entities := make([]CareerEntity, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for i, entry := range entries {
		rec, err := entryRecord(shape, i, entry)
		if err != nil {
			return nil, err
		}
		entity := buildEntity(rec, entry.Key, i)
		entity.ID = uniqueID(seen, entity.ID, i)
		seen[entity.ID] = i
		entities = append(entities, entity)
	}
	return entities, nil
}

// uniqueID returns id unchanged when unseen, otherwise the first free
// "<id>_<n>" with n counting up from index.
func uniqueID(seen map[string]int, id string, index int) string {
	if _, dup := seen[id]; !dup {
		return id
	}
	for n := index; ; n++ {
		candidate := fmt.Sprintf("%s_%d", id, n)
		if _, taken := seen[candidate]; !taken {
			return candidate
		}
	}
}

func decodeCorpus(data []byte) (corpusShape, []rawEntry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return 0, nil, fmt.Errorf("%w: empty document", ErrAmbiguousCorpus)
	}
	switch trimmed[0] {
	case '[':
		var items []any
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return 0, nil, fmt.Errorf("decode corpus list: %w", err)
		}
		return shapeList, listEntries(items), nil
	case '{':
		pairs, err := decodeOrderedObject(trimmed)
		if err != nil {
			return 0, nil, err
		}
		for _, p := range pairs {
			if p.Key != corpusListKey {
				continue
			}
			items, ok := p.Value.([]any)
			if !ok {
				return 0, nil, fmt.Errorf("%w: %q is not a list", ErrAmbiguousCorpus, corpusListKey)
			}
			return shapeList, listEntries(items), nil
		}
		return shapeMapping, pairs, nil
	default:
		return 0, nil, fmt.Errorf("%w: top level must be a list or an object", ErrAmbiguousCorpus)
	}
}

func listEntries(items []any) []rawEntry {
	out := make([]rawEntry, len(items))
	for i, item := range items {
		out[i] = rawEntry{Value: item}
	}
	return out
}

// decodeOrderedObject decodes a JSON object keeping its key order.
func decodeOrderedObject(data []byte) ([]rawEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrAmbiguousCorpus)
	}
	var out []rawEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode corpus key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("decode corpus: unexpected token %v", keyTok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode corpus entry %q: %w", key, err)
		}
		out = append(out, rawEntry{Key: key, Value: value})
	}
	return out, nil
}

// entryRecord coerces one top-level element into a record mapping.
func entryRecord(shape corpusShape, i int, entry rawEntry) (map[string]any, error) {
	switch v := entry.Value.(type) {
	case map[string]any:
		return v, nil
	case []any:
		if shape == shapeMapping {
			return nil, fmt.Errorf("%w: entry %q is a list", ErrAmbiguousCorpus, entry.Key)
		}
		return nil, fmt.Errorf("%w: entry %d is a nested list", ErrAmbiguousCorpus, i)
	default:
		// Bare strings and other scalars name the career.
		return map[string]any{"title": renderValue(v)}, nil
	}
}

func buildEntity(rec map[string]any, key string, index int) CareerEntity {
	fallbackID := key
	if fallbackID == "" {
		fallbackID = fmt.Sprintf("career_%d", index)
	}
	id := orDefault(firstText(rec, idFields), fallbackID)
	title := firstText(rec, titleFields)
	if title == "" {
		title = orDefault(key, id)
	}
	e := CareerEntity{
		ID:             id,
		Title:          title,
		Description:    firstText(rec, descriptionFields),
		Skills:         firstList(rec, skillFields),
		Path:           firstList(rec, pathFields),
		SubjectsNeeded: firstList(rec, subjectFields),
		Explanation:    firstText(rec, explanationFields),
		IndustryFit:    firstText(rec, industryFields),
		FutureScope:    firstText(rec, futureScopeFields),
		SalaryInfo:     firstText(rec, salaryFields),
	}
	e.SearchableText = searchableText(e)
	return e
}

// alignmentText is the space-joined title, description, skills and path used
// for keyword matching, so phrases may span adjacent skills.
func alignmentText(e CareerEntity) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{e.Title, e.Description, strings.Join(e.Skills, " "), strings.Join(e.Path, " ")} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// searchableText joins the title (twice, to weight it), description, skills
// and path steps.
func searchableText(e CareerEntity) string {
	parts := make([]string, 0, 3+len(e.Skills)+len(e.Path))
	if e.Title != "" {
		parts = append(parts, e.Title, e.Title)
	}
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	parts = append(parts, e.Skills...)
	parts = append(parts, e.Path...)
	return strings.Join(parts, searchSeparator)
}
