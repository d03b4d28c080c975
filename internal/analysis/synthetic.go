package analysis

import (
	"fmt"
	"math/rand"

	"goeda/domain/table"
	"goeda/internal"
	"goeda/internal/errors"
)

// Placeholder declares how to fabricate one column when it is absent.
// Choices draws uniformly from a list; otherwise numbers are drawn from
// [Min, Max), rounded down when Integer is set.
type Placeholder struct {
	Column  string   `yaml:"column" json:"column"`
	Choices []string `yaml:"choices,omitempty" json:"choices,omitempty"`
	Min     float64  `yaml:"min,omitempty" json:"min,omitempty"`
	Max     float64  `yaml:"max,omitempty" json:"max,omitempty"`
	Integer bool     `yaml:"integer,omitempty" json:"integer,omitempty"`
}

// Validate checks that the placeholder can produce values
func (p Placeholder) Validate() error {
	if p.Column == "" {
		return errors.ConfigInvalid("placeholder without column")
	}
	if len(p.Choices) == 0 && p.Max <= p.Min {
		return errors.ConfigInvalid(fmt.Sprintf("placeholder %q needs choices or min < max", p.Column))
	}
	if len(p.Choices) == 0 && p.Integer && int64(p.Max) <= int64(p.Min) {
		return errors.ConfigInvalid(fmt.Sprintf("placeholder %q has an empty integer range", p.Column))
	}
	return nil
}

// Synthesizer fabricates placeholder columns from a seeded source. The values
// carry no information about the data; callers must report them as synthetic.
type Synthesizer struct {
	rng    *rand.Rand
	logger *internal.Logger
}

// NewSynthesizer creates a synthesizer with a deterministic seed
func NewSynthesizer(seed int64, logger *internal.Logger) *Synthesizer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Synthesizer{
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// Fill adds every placeholder column absent from t and returns the names of
// the columns it fabricated. Existing columns are never touched.
func (s *Synthesizer) Fill(t *table.Table, placeholders []Placeholder) ([]string, error) {
	var fabricated []string
	for _, p := range placeholders {
		if err := p.Validate(); err != nil {
			return fabricated, err
		}
		if t.HasColumn(p.Column) {
			continue
		}

		values := make([]table.Value, t.Len())
		for i := range values {
			values[i] = s.draw(p)
		}
		if err := t.SetColumn(p.Column, values); err != nil {
			return fabricated, errors.Wrapf(err, "synthesizing %s", p.Column)
		}

		s.logger.Warn("[Synthesizer] column %q is absent from %s; filled %d rows with random placeholder values", p.Column, t.Name, t.Len())
		fabricated = append(fabricated, p.Column)
	}
	return fabricated, nil
}

func (s *Synthesizer) draw(p Placeholder) table.Value {
	if len(p.Choices) > 0 {
		return table.NewString(p.Choices[s.rng.Intn(len(p.Choices))])
	}
	if p.Integer {
		lo, hi := int64(p.Min), int64(p.Max)
		return table.NewNumeric(float64(lo + s.rng.Int63n(hi-lo)))
	}
	return table.NewNumeric(p.Min + s.rng.Float64()*(p.Max-p.Min))
}

// MissingColumns lists the placeholder columns t does not have
func MissingColumns(t *table.Table, placeholders []Placeholder) []string {
	var missing []string
	for _, p := range placeholders {
		if !t.HasColumn(p.Column) {
			missing = append(missing, p.Column)
		}
	}
	return missing
}
