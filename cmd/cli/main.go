package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"goeda/adapters/datareadiness/coercer"
	"goeda/adapters/excel"
	"goeda/domain/table"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/cleaner"
	"goeda/internal/config"
	"goeda/internal/dataset"
	"goeda/internal/pipeline"
	"goeda/internal/report"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "goeda",
		Short:         "Tabular ETL and exploratory analysis pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newProfilesCmd(),
		newInspectCmd(),
		newMergeCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var dataDir, outDir, profilesFile string
	var synthetic bool
	var seed int64

	cmd := &cobra.Command{
		Use:   "run [profile...]",
		Short: "Run pipeline profiles (all of them when none are named)",
		Long: `Load, clean, analyze and report one or more profiles.

Defaults come from the environment (EDA_DATA_DIR, EDA_OUTPUT_DIR, EDA_PROFILES,
EDA_PROFILES_FILE, EDA_SYNTHETIC, EDA_SEED); flags override them.

Example: goeda run amazon-sales --data-dir ./data --out ./output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("data-dir") {
				cfg.Paths.DataDir = dataDir
			}
			if flags.Changed("out") {
				cfg.Paths.OutputDir = outDir
			}
			if flags.Changed("profiles-file") {
				cfg.Profiles.File = profilesFile
			}
			if flags.Changed("synthetic") {
				cfg.Synthetic.Enabled = synthetic
			}
			if flags.Changed("seed") {
				cfg.Synthetic.Seed = seed
			}
			if len(args) > 0 {
				cfg.Profiles.Names = args
			}
			return runProfiles(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", ".", "Directory holding the input files")
	cmd.Flags().StringVar(&outDir, "out", "output", "Output directory; each profile writes to a subdirectory")
	cmd.Flags().StringVar(&profilesFile, "profiles-file", "", "YAML file adding or overriding profiles")
	cmd.Flags().BoolVar(&synthetic, "synthetic", false, "Fill absent analysis columns with random placeholder values")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for placeholder values")

	return cmd
}

func runProfiles(ctx context.Context, cfg *config.Config) error {
	logger := internal.NewLogger(cfg.LogLevel)

	registry, err := pipeline.RegistryFromFile(cfg.Profiles.File)
	if err != nil {
		return err
	}
	profiles, err := registry.Select(cfg.Profiles.Names)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(pipeline.OptionsFromConfig(cfg), logger)
	results, runErr := runner.RunAll(ctx, profiles)

	for _, res := range results {
		printRunResult(res)
	}
	return runErr
}

func printRunResult(res *pipeline.RunResult) {
	status := "✅"
	if !res.Stages.Succeeded() {
		status = "❌"
	}
	fmt.Printf("\n%s %s (run %s)\n", status, res.Profile, res.RunID.Short())

	for _, st := range res.Stages.Results {
		state := "ok"
		switch {
		case st.Skipped:
			state = "skipped"
		case !st.Success:
			state = "failed: " + st.Error
		}
		fmt.Printf("   %-8s %6dms  %s\n", st.StageName, st.Duration, state)
	}

	if s := res.Summary; s != nil {
		if m := s.Metrics; m != nil {
			fmt.Printf("   Total %s: %.2f | Average: %.2f | Rows: %d\n", m.Measure, m.Total, m.Mean, m.Rows)
		}
		for _, w := range s.Warnings {
			fmt.Printf("   ⚠️  %s\n", w)
		}
	}
	if len(res.Synthetic) > 0 {
		fmt.Printf("   ⚠️  synthetic columns: %s\n", strings.Join(res.Synthetic, ", "))
	}
	fmt.Printf("   %d artifacts in %s\n", len(res.Artifacts), res.OutputDir)
}

func newProfilesCmd() *cobra.Command {
	var profilesFile string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List available profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("profiles-file") {
				profilesFile = os.Getenv("EDA_PROFILES_FILE")
			}
			registry, err := pipeline.RegistryFromFile(profilesFile)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOURCES\tDESCRIPTION")
			for _, name := range registry.Names() {
				p, _ := registry.Get(name)
				paths := make([]string, len(p.Sources))
				for i, src := range p.Sources {
					paths[i] = src.Path
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, strings.Join(paths, ", "), p.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&profilesFile, "profiles-file", "", "YAML file adding or overriding profiles")
	return cmd
}

type sourceFlags struct {
	sheet     string
	delimiter string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "Worksheet to read (xlsx only, default first sheet)")
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "Field delimiter (csv only, default comma)")
}

func (f *sourceFlags) load(path string, logger *internal.Logger) (*table.Table, error) {
	cfg := excel.DefaultSourceConfig(path)
	cfg.Sheet = f.sheet
	if f.delimiter != "" {
		cfg.Delimiter = []rune(f.delimiter)[0]
	}
	return excel.Load(cfg, logger)
}

func newInspectCmd() *cobra.Command {
	var src sourceFlags
	var rows int

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print inferred column types, the first rows and summary statistics of one file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewLogger(internal.LogLevelWarn)
			t, err := src.load(args[0], logger)
			if err != nil {
				return err
			}

			fmt.Printf("📄 %s: %d rows x %d columns\n\n", args[0], t.Len(), t.Width())

			tc := coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLUMN\tTYPE\tSUGGESTED\tNUMERIC\tDATE\tMISSING")
			for _, col := range t.Columns {
				values, _ := t.Column(col)
				ta := tc.AnalyzeTypeDistribution(values)
				fmt.Fprintf(w, "%s\t%s\t%s\t%.0f%%\t%.0f%%\t%d\n",
					col, t.ColumnType(col), ta.RecommendedType, ta.NumericRatio*100, ta.DateRatio*100, t.MissingCount(col))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%s\n", report.FormatHead(t, rows))

			d, err := analysis.Describe(t)
			if err != nil {
				fmt.Printf("\nNo summary statistics: %v\n", err)
				return nil
			}
			fmt.Printf("\n%s\n", report.FormatDescribe(d))
			fmt.Printf("\n%s\n", report.FormatShape(d))
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().IntVar(&rows, "rows", 5, "Number of rows to show")
	return cmd
}

func newMergeCmd() *cobra.Command {
	var key, out, normalize string

	cmd := &cobra.Command{
		Use:   "merge <file>...",
		Short: "Clean several files and inner-merge them on a shared column",
		Long: `Load and clean every file (duplicates dropped, gaps forward-filled), then
inner-merge them left to right. Without --key the first column common to
every file is used.

Example: goeda merge a.xlsx b.xlsx c.xlsx --normalize lower --out merged.csv`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := internal.NewLogger(internal.LogLevelWarn)
			cleanCfg := cleaner.Config{NormalizeColumns: normalize}
			if err := cleanCfg.Validate(); err != nil {
				return err
			}

			tables := make([]*table.Table, 0, len(args))
			for _, path := range args {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				t, err := excel.Load(excel.DefaultSourceConfig(path), logger)
				if err != nil {
					return err
				}
				cleaned, _, err := cleaner.New(cleanCfg, logger).Clean(t)
				if err != nil {
					return err
				}
				tables = append(tables, cleaned)
			}

			res, err := dataset.NewMerger(dataset.MergeConfig{Key: key}, logger).Merge(tables...)
			if err != nil {
				return err
			}
			fmt.Printf("🔗 %s\n", res.Describe())

			if out == "" {
				fmt.Println(report.FormatHead(res.Table, 10))
				return nil
			}
			if err := report.WriteCSV(out, res.Table); err != nil {
				return err
			}
			fmt.Printf("💾 Merged data saved to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Merge column (default: first column common to all files)")
	cmd.Flags().StringVar(&out, "out", "", "CSV file to write (default: print the first rows)")
	cmd.Flags().StringVar(&normalize, "normalize", "", `Column name normalization before merging ("lower")`)
	return cmd
}
