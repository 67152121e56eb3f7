package artifact

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mountjawa/peakfinder/schema"
)

// EncoderParams is the on-disk form of a fitted label encoder.
type EncoderParams struct {
	Classes []string `json:"classes"`
}

// LabelEncoder maps a label to its index in a sorted vocabulary.
type LabelEncoder struct {
	classes []string
	index   map[string]int
}

// NewLabelEncoder builds an encoder from the fitted classes. The classes must
// be non-empty, unique and sorted, since codes are their sorted positions.
func NewLabelEncoder(classes []string) (*LabelEncoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("encoder has no classes")
	}
	if !slices.IsSorted(classes) {
		return nil, fmt.Errorf("encoder classes must be sorted")
	}
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		if strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("encoder class %d is blank", i)
		}
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("encoder class %q is duplicated", c)
		}
		index[c] = i
	}
	return &LabelEncoder{classes: slices.Clone(classes), index: index}, nil
}

// Transform implements contract.Encoder.
func (e *LabelEncoder) Transform(label string) (int, error) {
	code, ok := e.index[label]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not one of %v", schema.ErrUnknownCategory, label, e.classes)
	}
	return code, nil
}

// Classes implements contract.Encoder.
func (e *LabelEncoder) Classes() []string {
	return slices.Clone(e.classes)
}
