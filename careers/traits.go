package careers

import (
	"context"
	"fmt"
	"strings"
)

// TraitIndex holds each trait's keyword list and the embedding of that list.
// It is built once and never mutated.
type TraitIndex struct {
	keywords map[Trait][]string
	vectors  map[Trait][]float32
}

// BuildTraitIndex embeds the joined keyword list of every trait in one
// provider call. A trait without keywords is embedded from its own name.
func BuildTraitIndex(ctx context.Context, embedder Embedder, keywords map[Trait][]string) (*TraitIndex, error) {
	texts := make([]string, len(Traits))
	kws := make(map[Trait][]string, len(Traits))
	for i, trait := range Traits {
		list := append([]string(nil), keywords[trait]...)
		kws[trait] = list
		text := strings.TrimSpace(strings.Join(list, " "))
		if text == "" {
			text = string(trait)
		}
		texts[i] = text
	}
	vecs, err := embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed trait keywords: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embed trait keywords: got %d vectors for %d traits", len(vecs), len(texts))
	}
	vectors := make(map[Trait][]float32, len(Traits))
	for i, trait := range Traits {
		vectors[trait] = vecs[i]
	}
	return &TraitIndex{keywords: kws, vectors: vectors}, nil
}

// Keywords returns the keyword list of trait.
func (t *TraitIndex) Keywords(trait Trait) []string {
	return t.keywords[trait]
}

// Vector returns the keyword embedding of trait.
func (t *TraitIndex) Vector(trait Trait) ([]float32, bool) {
	vec, ok := t.vectors[trait]
	return vec, ok && len(vec) > 0
}

// Has reports whether trait belongs to the index.
func (t *TraitIndex) Has(trait Trait) bool {
	_, ok := t.keywords[trait]
	return ok
}
