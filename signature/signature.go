package signature

import (
	"github.com/poiesic/kindred/core"
)

// LeafDescription is the score description of a single-article signature.
const LeafDescription = "single article"

// Source identifies the article behind a leaf signature.
type Source struct {
	ID        string
	Title     string
	Published core.DateRange
}

// Score is a signature's similarity score. Details is nil on leaves.
type Score struct {
	Amount      float64
	Description string
	Details     *ScoreDetails
}

// ScoreDetails records how a merged score was reached.
type ScoreDetails struct {
	Predicates         []string           // union across inputs, sorted
	PredicateRatios    map[string]float64 // only predicates that contributed a ratio
	AnnotationScore    float64
	HasAnnotationScore bool // false when no predicate could contribute
	VocabularySizes    []int
	OverlappingWords   int
	WordScore          float64
	HasWordScore       bool // false when every vocabulary was empty
}

// Signature is the similarity fingerprint of one or more articles.
type Signature struct {
	// Key is the article id for a leaf or the sorted, comma-joined ids of a merge.
	Key string

	// Origin is set on leaves only.
	Origin *Source

	// Sources are the inputs of a merge, in contribution order.
	Sources []*Signature

	// ByPredicate maps predicate to annotation id to "type:prefLabel".
	ByPredicate map[string]map[string]string

	// ByID holds the indexed annotations.
	ByID map[string]core.Annotation

	Words WordStats
	Score Score
}

// Empty returns a signature with no annotations and no vocabulary.
// It stands in for an article that could not be fetched.
func Empty(key string) *Signature {
	return &Signature{
		Key:         key,
		ByPredicate: map[string]map[string]string{},
		ByID:        map[string]core.Annotation{},
	}
}

// IsLeaf reports whether s describes a single article.
func (s *Signature) IsLeaf() bool {
	return len(s.Sources) == 0
}

// Leaves returns the contributing leaf signatures in contribution order,
// flattening nested merges without recursion.
func (s *Signature) Leaves() []*Signature {
	var leaves []*Signature
	stack := []*Signature{s}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.IsLeaf() {
			leaves = append(leaves, n)
			continue
		}
		for i := len(n.Sources) - 1; i >= 0; i-- {
			stack = append(stack, n.Sources[i])
		}
	}
	return leaves
}

// IDs returns the article ids of every leaf.
func (s *Signature) IDs() []string {
	leaves := s.Leaves()
	ids := make([]string, 0, len(leaves))
	for _, l := range leaves {
		ids = append(ids, l.leafID())
	}
	return ids
}

// Titles returns the titles of every leaf.
func (s *Signature) Titles() []string {
	leaves := s.Leaves()
	titles := make([]string, 0, len(leaves))
	for _, l := range leaves {
		if l.Origin != nil {
			titles = append(titles, l.Origin.Title)
		} else {
			titles = append(titles, "")
		}
	}
	return titles
}

// Published returns the range spanning every leaf's publish date.
func (s *Signature) Published() core.DateRange {
	var r core.DateRange
	for _, l := range s.Leaves() {
		if l.Origin == nil {
			continue
		}
		r = r.Include(l.Origin.Published.Earliest)
		r = r.Include(l.Origin.Published.Latest)
	}
	return r
}

// Newest returns the most recently contributed leaf.
func (s *Signature) Newest() *Signature {
	leaves := s.Leaves()
	return leaves[len(leaves)-1]
}

// AnnotationIDs returns the ids of every indexed annotation.
func (s *Signature) AnnotationIDs() []string {
	ids := make([]string, 0, len(s.ByID))
	for id := range s.ByID {
		ids = append(ids, id)
	}
	return ids
}

func (s *Signature) leafID() string {
	if s.Origin != nil {
		return s.Origin.ID
	}
	return s.Key
}
