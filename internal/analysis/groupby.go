package analysis

import (
	"fmt"
	"sort"
	"strings"

	"goeda/domain/table"
	"goeda/internal/errors"
)

// Aggregation reduces the measure values of one group
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggMean  Aggregation = "mean"
	AggCount Aggregation = "count"
)

// ParseAggregation accepts sum, mean or count; empty means sum
func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(strings.ToLower(strings.TrimSpace(s))) {
	case "", AggSum:
		return AggSum, nil
	case AggMean, "avg", "average":
		return AggMean, nil
	case AggCount:
		return AggCount, nil
	default:
		return "", errors.ConfigInvalid(fmt.Sprintf("unknown aggregation %q", s))
	}
}

// Series is a keyed sequence of numbers, one per group
type Series struct {
	Name      string        `json:"name"`
	Dimension string        `json:"dimension"`
	Measure   string        `json:"measure,omitempty"`
	Agg       Aggregation   `json:"agg"`
	Keys      []table.Value `json:"keys"`
	Values    []float64     `json:"values"`
}

// Len returns the number of groups
func (s *Series) Len() int {
	return len(s.Keys)
}

// Labels renders the keys for chart axes
func (s *Series) Labels() []string {
	return renderValues(s.Keys)
}

// SortByValue reorders groups by value; ties keep key order
func (s *Series) SortByValue(desc bool) {
	idx := make([]int, s.Len())
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if desc {
			return s.Values[idx[a]] > s.Values[idx[b]]
		}
		return s.Values[idx[a]] < s.Values[idx[b]]
	})
	keys := make([]table.Value, len(idx))
	values := make([]float64, len(idx))
	for i, j := range idx {
		keys[i] = s.Keys[j]
		values[i] = s.Values[j]
	}
	s.Keys, s.Values = keys, values
}

type group struct {
	key   table.Value
	sum   float64
	count int
}

// groups collects cells of one column, skipping missing ones
type groups struct {
	index map[string]*group
	order []*group
}

func newGroups() *groups {
	return &groups{index: make(map[string]*group)}
}

func (g *groups) get(v table.Value) (*group, bool) {
	k, ok := table.CellKey(v)
	if !ok {
		return nil, false
	}
	grp, exists := g.index[k]
	if !exists {
		grp = &group{key: v}
		g.index[k] = grp
		g.order = append(g.order, grp)
	}
	return grp, true
}

func (g *groups) sorted() []*group {
	out := append([]*group(nil), g.order...)
	sort.SliceStable(out, func(a, b int) bool { return lessValue(out[a].key, out[b].key) })
	return out
}

// GroupBy aggregates measure per distinct value of by. Keys come back in
// ascending order; rows with a missing key or measure are skipped.
func GroupBy(t *table.Table, by, measure string, agg Aggregation) (*Series, error) {
	byIdx := t.ColumnIndex(by)
	if byIdx < 0 {
		return nil, errors.MissingColumn(by)
	}
	mIdx := -1
	if agg != AggCount || measure != "" {
		mIdx = t.ColumnIndex(measure)
		if mIdx < 0 {
			return nil, errors.MissingColumn(measure)
		}
	}

	g := newGroups()
	for _, row := range t.Rows {
		var x float64
		if mIdx >= 0 {
			f, ok := row[mIdx].Float()
			if !ok {
				continue
			}
			x = f
		}
		grp, ok := g.get(row[byIdx])
		if !ok {
			continue
		}
		grp.sum += x
		grp.count++
	}

	s := &Series{Name: seriesName(by, measure, agg), Dimension: by, Measure: measure, Agg: agg}
	for _, grp := range g.sorted() {
		s.Keys = append(s.Keys, grp.key)
		switch agg {
		case AggMean:
			s.Values = append(s.Values, grp.sum/float64(grp.count))
		case AggCount:
			s.Values = append(s.Values, float64(grp.count))
		default:
			s.Values = append(s.Values, grp.sum)
		}
	}
	return s, nil
}

// ValueCounts counts rows per distinct value, most frequent first
func ValueCounts(t *table.Table, column string) (*Series, error) {
	s, err := GroupBy(t, column, "", AggCount)
	if err != nil {
		return nil, err
	}
	s.Name = column + " counts"
	s.SortByValue(true)
	return s, nil
}

// CrossTab counts rows per (row key, column key) pair
type CrossTab struct {
	X      string        `json:"x"`
	Hue    string        `json:"hue"`
	Rows   []table.Value `json:"rows"`
	Cols   []table.Value `json:"cols"`
	Counts [][]float64   `json:"counts"`
}

// RowLabels renders the x keys
func (c *CrossTab) RowLabels() []string {
	return renderValues(c.Rows)
}

// ColLabels renders the hue keys
func (c *CrossTab) ColLabels() []string {
	return renderValues(c.Cols)
}

// CrossCount tabulates x against hue, both in ascending key order
func CrossCount(t *table.Table, x, hue string) (*CrossTab, error) {
	xIdx := t.ColumnIndex(x)
	if xIdx < 0 {
		return nil, errors.MissingColumn(x)
	}
	hIdx := t.ColumnIndex(hue)
	if hIdx < 0 {
		return nil, errors.MissingColumn(hue)
	}

	xs, hs := newGroups(), newGroups()
	pairs := make(map[[2]*group]int)
	for _, row := range t.Rows {
		xg, ok := xs.get(row[xIdx])
		if !ok {
			continue
		}
		hg, ok := hs.get(row[hIdx])
		if !ok {
			continue
		}
		pairs[[2]*group{xg, hg}]++
	}

	ct := &CrossTab{X: x, Hue: hue}
	xsSorted, hsSorted := xs.sorted(), hs.sorted()
	for _, hg := range hsSorted {
		ct.Cols = append(ct.Cols, hg.key)
	}
	for _, xg := range xsSorted {
		ct.Rows = append(ct.Rows, xg.key)
		counts := make([]float64, len(hsSorted))
		for j, hg := range hsSorted {
			counts[j] = float64(pairs[[2]*group{xg, hg}])
		}
		ct.Counts = append(ct.Counts, counts)
	}
	return ct, nil
}

// lessValue orders numbers before dates before strings, each by natural order
func lessValue(a, b table.Value) bool {
	if a.Type != b.Type {
		return typeRank(a.Type) < typeRank(b.Type)
	}
	switch a.Type {
	case table.ValueTypeNumeric:
		return a.Num < b.Num
	case table.ValueTypeDate:
		return a.Time.Before(b.Time)
	default:
		return a.Str < b.Str
	}
}

func typeRank(t table.ValueType) int {
	switch t {
	case table.ValueTypeNumeric:
		return 0
	case table.ValueTypeDate:
		return 1
	default:
		return 2
	}
}

func seriesName(by, measure string, agg Aggregation) string {
	if measure == "" {
		return fmt.Sprintf("%s by %s", agg, by)
	}
	return fmt.Sprintf("%s of %s by %s", agg, measure, by)
}

func renderValues(values []table.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
