package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"goeda/domain/table"
	"goeda/internal/analysis"
	"goeda/internal/cleaner"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// SourceSummary describes one loaded and cleaned input
type SourceSummary struct {
	Name     string           `json:"name"`
	Path     string           `json:"path"`
	Rows     int              `json:"rows"`
	Columns  []string         `json:"columns"`
	Cleaning *cleaner.Summary `json:"cleaning,omitempty"`
}

// Summary is everything a run reports besides its charts
type Summary struct {
	RunID       string                      `json:"run_id"`
	Profile     string                      `json:"profile"`
	Description string                      `json:"description,omitempty"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Sources     []SourceSummary             `json:"sources"`
	Merge       string                      `json:"merge,omitempty"`
	Metrics     *analysis.Metrics           `json:"metrics,omitempty"`
	Describe    *analysis.Description       `json:"describe,omitempty"`
	Correlation *analysis.CorrelationMatrix `json:"-"`
	Artifacts   []string                    `json:"artifacts"`
	Synthetic   []string                    `json:"synthetic,omitempty"`
	Warnings    []string                    `json:"warnings,omitempty"`
}

// Summary file names inside the output directory
const (
	SummaryMarkdownFile = "summary.md"
	SummaryHTMLFile     = "summary.html"
)

// WriteSummary writes summary.md and its HTML rendering into dir and returns both paths
func WriteSummary(dir string, s *Summary) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	md := RenderMarkdown(s)
	mdPath := filepath.Join(dir, SummaryMarkdownFile)
	if err := os.WriteFile(mdPath, md, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", mdPath, err)
	}

	htmlPath := filepath.Join(dir, SummaryHTMLFile)
	if err := os.WriteFile(htmlPath, RenderHTML(md, "EDA report: "+s.Profile), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}
	return []string{mdPath, htmlPath}, nil
}

// RenderHTML converts report markdown into a standalone HTML page
func RenderHTML(md []byte, title string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML(md, p, renderer)
}

// RenderMarkdown lays out the summary as a markdown document
func RenderMarkdown(s *Summary) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# EDA report: %s\n\n", s.Profile)
	if s.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", s.Description)
	}
	fmt.Fprintf(&b, "- Run: `%s`\n", s.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339))

	if len(s.Synthetic) > 0 {
		b.WriteString("## Warning: synthetic data\n\n")
		b.WriteString("The following columns were absent from the data and were filled with random placeholder values. ")
		b.WriteString("Charts built on them do not describe the dataset.\n\n")
		for _, col := range s.Synthetic {
			fmt.Fprintf(&b, "- `%s`\n", col)
		}
		b.WriteString("\n")
	}

	if len(s.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, w := range s.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Sources\n\n")
	b.WriteString("| source | path | rows in | duplicates | cells filled | rows dropped | rows out |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|---:|\n")
	for _, src := range s.Sources {
		if c := src.Cleaning; c != nil {
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %d |\n",
				escapeCell(src.Name), escapeCell(src.Path), c.InputRows, c.DuplicatesRemoved, c.CellsFilled, c.RowsDropped, c.OutputRows)
		} else {
			fmt.Fprintf(&b, "| %s | %s | %d | | | | |\n", escapeCell(src.Name), escapeCell(src.Path), src.Rows)
		}
	}
	b.WriteString("\n")

	for _, src := range s.Sources {
		if src.Cleaning == nil {
			continue
		}
		failures := make([]string, 0)
		for _, op := range src.Cleaning.Operations {
			if (op.Kind == cleaner.OpCoerceNumeric || op.Kind == cleaner.OpCoerceDate) && op.Count > 0 {
				failures = append(failures, fmt.Sprintf("`%s`: %d %s", op.Column, op.Count, op.Reason))
			}
		}
		if len(failures) > 0 {
			fmt.Fprintf(&b, "Coercion in %s: %s.\n\n", src.Name, strings.Join(failures, "; "))
		}
	}

	if s.Merge != "" {
		fmt.Fprintf(&b, "## Merge\n\n%s\n\n", s.Merge)
	}

	if m := s.Metrics; m != nil {
		b.WriteString("## Key metrics\n\n")
		fmt.Fprintf(&b, "- Total %s: %s\n", m.Measure, formatFloat(m.Total))
		fmt.Fprintf(&b, "- Average %s: %s\n", m.Measure, formatFloat(m.Mean))
		fmt.Fprintf(&b, "- Rows: %d\n\n", m.Rows)
	}

	if d := s.Describe; d != nil && len(d.Columns) > 0 {
		b.WriteString("## Summary statistics\n\n")
		b.WriteString("| column |")
		for _, stat := range analysis.DescribeStatistics {
			fmt.Fprintf(&b, " %s |", stat)
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---:|", len(analysis.DescribeStatistics)))
		b.WriteString("\n")
		for _, col := range d.Columns {
			fmt.Fprintf(&b, "| %s |", escapeCell(col.Column))
			for _, v := range col.Values() {
				fmt.Fprintf(&b, " %s |", formatFloat(v))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")

		b.WriteString("### Distribution shape\n\n")
		b.WriteString("| column | skewness | IQR outliers |\n|---|---:|---:|\n")
		for _, col := range d.Columns {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", escapeCell(col.Column), formatFloat(col.Skewness), col.Outliers)
		}
		b.WriteString("\n")
	}

	if c := s.Correlation; c != nil && c.Size() > 0 {
		b.WriteString("## Correlation\n\n|  |")
		for _, l := range c.Labels {
			fmt.Fprintf(&b, " %s |", escapeCell(l))
		}
		b.WriteString("\n|---|")
		b.WriteString(strings.Repeat("---:|", c.Size()))
		b.WriteString("\n")
		for i, l := range c.Labels {
			fmt.Fprintf(&b, "| %s |", escapeCell(l))
			for j := range c.Labels {
				fmt.Fprintf(&b, " %s |", formatCorr(c.At(i, j)))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if x, y, r, ok := c.Strongest(); ok {
			fmt.Fprintf(&b, "Strongest pair: %s / %s (r = %.2f).\n\n", x, y, r)
		}
	}

	if len(s.Artifacts) > 0 {
		b.WriteString("## Artifacts\n\n")
		for _, a := range s.Artifacts {
			name := filepath.Base(a)
			if strings.HasSuffix(strings.ToLower(name), ".png") {
				fmt.Fprintf(&b, "- [%s](%s)\n\n  ![%s](%s)\n", name, name, name, name)
				continue
			}
			fmt.Fprintf(&b, "- [%s](%s)\n", name, name)
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

// FormatDescribe renders a describe table for the console
func FormatDescribe(d *analysis.Description) string {
	if d == nil || len(d.Columns) == 0 {
		return "no numeric columns"
	}
	columns := []series.Series{series.New(analysis.DescribeStatistics, series.String, "statistic")}
	for _, col := range d.Columns {
		columns = append(columns, series.New(col.Values(), series.Float, col.Column))
	}
	return dataframe.New(columns...).String()
}

// FormatShape renders skewness and IQR outlier counts for the console
func FormatShape(d *analysis.Description) string {
	if d == nil || len(d.Columns) == 0 {
		return "no numeric columns"
	}
	names := make([]string, len(d.Columns))
	skew := make([]float64, len(d.Columns))
	outliers := make([]int, len(d.Columns))
	for i, col := range d.Columns {
		names[i] = col.Column
		skew[i] = col.Skewness
		outliers[i] = col.Outliers
	}
	return dataframe.New(
		series.New(names, series.String, "column"),
		series.New(skew, series.Float, "skewness"),
		series.New(outliers, series.Int, "outliers"),
	).String()
}

// FormatHead renders the first n rows of a table for the console
func FormatHead(t *table.Table, n int) string {
	records := t.Records()
	if len(records) > n+1 {
		records = records[:n+1]
	}
	df := dataframe.LoadRecords(records, dataframe.DetectTypes(false), dataframe.DefaultType(series.String))
	return df.String()
}

func formatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'f', 2, 64)
	}
}

func formatCorr(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.2f", v)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
