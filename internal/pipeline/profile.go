package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"goeda/domain/core"
	"goeda/internal/analysis"
	"goeda/internal/cleaner"
	"goeda/internal/errors"
	"goeda/internal/report"

	"gopkg.in/yaml.v3"
)

// Source is one input file of a profile. Relative paths resolve against the data directory.
type Source struct {
	Name      string `yaml:"name"`
	Path      string `yaml:"path"`
	Format    string `yaml:"format,omitempty"`
	Sheet     string `yaml:"sheet,omitempty"`
	Delimiter string `yaml:"delimiter,omitempty"`
	Output    string `yaml:"output,omitempty"` // cleaned CSV file name, empty: cleaned_<name>.csv
}

// OutputFile returns the cleaned CSV file name
func (s Source) OutputFile() string {
	if s.Output != "" {
		return s.Output
	}
	return "cleaned_" + s.Name + ".csv"
}

// MergeSpec configures the inner merge of multi-source profiles
type MergeSpec struct {
	Key    string `yaml:"key,omitempty"`    // empty: first column common to every source
	Output string `yaml:"output,omitempty"` // merged CSV file name, empty: not written
}

// Grouping aggregates a measure per dimension value and charts it
type Grouping struct {
	By      string `yaml:"by"`
	Measure string `yaml:"measure"`
	Agg     string `yaml:"agg,omitempty"`
	Chart   string `yaml:"chart,omitempty"` // line or bar
	Sort    string `yaml:"sort,omitempty"`  // asc, desc, empty: key order

	report.ChartSpec `yaml:",inline"`
}

// Count charts row counts of one column, split by Hue when set
type Count struct {
	Column string `yaml:"column"`
	Hue    string `yaml:"hue,omitempty"`
	Sort   string `yaml:"sort,omitempty"` // desc for most frequent first, empty: key order

	report.ChartSpec `yaml:",inline"`
}

// Histogram charts the distribution of one numeric column
type Histogram struct {
	Column string `yaml:"column"`
	Bins   int    `yaml:"bins,omitempty"`

	report.ChartSpec `yaml:",inline"`
}

// AnalysisSpec lists what the analyze and report stages produce
type AnalysisSpec struct {
	Describe         bool             `yaml:"describe,omitempty"`
	Correlation      bool             `yaml:"correlation,omitempty"`
	CorrelationChart report.ChartSpec `yaml:"correlation_chart,omitempty"`
	KeyMetric        string           `yaml:"key_metric,omitempty"`
	Groupings        []Grouping       `yaml:"groupings,omitempty"`
	Counts           []Count          `yaml:"counts,omitempty"`
	Histograms       []Histogram      `yaml:"histograms,omitempty"`
	Workbook         string           `yaml:"workbook,omitempty"` // XLSX with tables and native charts
}

// SyntheticSpec declares placeholder columns. They are fabricated only when enabled.
type SyntheticSpec struct {
	Enabled      bool                   `yaml:"enabled,omitempty"`
	Placeholders []analysis.Placeholder `yaml:"placeholders,omitempty"`
}

// Profile is one complete pipeline definition
type Profile struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Sources     []Source       `yaml:"sources"`
	Clean       cleaner.Config `yaml:"clean,omitempty"`
	Merge       MergeSpec      `yaml:"merge,omitempty"`
	Analysis    AnalysisSpec   `yaml:"analysis,omitempty"`
	Synthetic   SyntheticSpec  `yaml:"synthetic,omitempty"`
}

// Validate checks a profile before any file is touched
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.ConfigInvalid("profile name is required")
	}
	if len(p.Sources) == 0 {
		return errors.ConfigInvalid(fmt.Sprintf("profile %s has no sources", p.Name))
	}
	names := make(map[string]bool)
	for _, src := range p.Sources {
		if src.Name == "" || src.Path == "" {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: every source needs a name and a path", p.Name))
		}
		if names[src.Name] {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: duplicate source %s", p.Name, src.Name))
		}
		names[src.Name] = true
		if len([]rune(src.Delimiter)) > 1 {
			return errors.ConfigInvalid(fmt.Sprintf("source %s: delimiter must be a single character", src.Name))
		}
	}
	if err := p.Clean.Validate(); err != nil {
		return err
	}

	for _, g := range p.Analysis.Groupings {
		if g.By == "" || g.Measure == "" {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: grouping needs by and measure", p.Name))
		}
		if _, err := analysis.ParseAggregation(g.Agg); err != nil {
			return err
		}
		switch g.Chart {
		case "", "line", "bar":
		default:
			return errors.ConfigInvalid(fmt.Sprintf("grouping by %s: unknown chart %q", g.By, g.Chart))
		}
		if err := validateSort(g.Sort); err != nil {
			return err
		}
	}
	for _, c := range p.Analysis.Counts {
		if c.Column == "" {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: count needs a column", p.Name))
		}
		if err := validateSort(c.Sort); err != nil {
			return err
		}
	}
	for _, h := range p.Analysis.Histograms {
		if h.Column == "" || h.Bins < 0 {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: histogram needs a column and non-negative bins", p.Name))
		}
	}
	for _, ph := range p.Synthetic.Placeholders {
		if err := ph.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func validateSort(s string) error {
	switch s {
	case "", "asc", "desc":
		return nil
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unknown sort %q", s))
	}
}

// profileFile is the YAML layout of a profiles file
type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// LoadProfiles reads profiles from a YAML file
func LoadProfiles(path string) ([]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err, "reading profiles file "+path)
	}
	return ParseProfiles(data)
}

// ParseProfiles decodes and validates YAML profile definitions
func ParseProfiles(data []byte) ([]Profile, error) {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, err, "parsing profiles")
	}
	for _, p := range file.Profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return file.Profiles, nil
}

// Registry holds profiles by name
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry starts from the built-in profiles; later additions replace same-named ones
func NewRegistry(extra ...Profile) *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	for _, p := range BuiltinProfiles() {
		r.profiles[p.Name] = p
	}
	for _, p := range extra {
		r.profiles[p.Name] = p
	}
	return r
}

// Names lists registered profile names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns one profile
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, errors.WithCode(errors.CodeConfigInvalid, core.ErrProfileNotFound, fmt.Sprintf("profile %q (known: %s)", name, strings.Join(r.Names(), ", ")))
	}
	return p, nil
}

// Select returns the named profiles in order, or all of them when names is empty
func (r *Registry) Select(names []string) ([]Profile, error) {
	if len(names) == 0 {
		names = r.Names()
	}
	out := make([]Profile, 0, len(names))
	for _, name := range names {
		p, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
