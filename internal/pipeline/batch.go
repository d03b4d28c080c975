package pipeline

import (
	"context"
	"fmt"
	"strings"

	"goeda/internal/config"
	"goeda/internal/errors"
)

// OptionsFromConfig maps environment configuration onto runner options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DataDir:     cfg.Paths.DataDir,
		OutputDir:   cfg.Paths.OutputDir,
		Synthetic:   cfg.Synthetic.Enabled,
		Seed:        cfg.Synthetic.Seed,
		ChartWidth:  cfg.Charts.Width,
		ChartHeight: cfg.Charts.Height,
	}
}

// RegistryFromFile returns the built-in profiles plus those in path, if set
func RegistryFromFile(path string) (*Registry, error) {
	if path == "" {
		return NewRegistry(), nil
	}
	extra, err := LoadProfiles(path)
	if err != nil {
		return nil, err
	}
	return NewRegistry(extra...), nil
}

// RunAll runs every profile in order. A failing profile does not stop the
// ones after it; the returned error names every profile that failed.
func (r *Runner) RunAll(ctx context.Context, profiles []Profile) ([]*RunResult, error) {
	var results []*RunResult
	var failed []string
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrap(err, "run cancelled before profile "+p.Name)
		}
		res, err := r.Run(ctx, p)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", p.Name, err))
		}
	}
	if len(failed) > 0 {
		return results, errors.New(errors.CodeInternalError, fmt.Sprintf("%d of %d profiles failed: %s", len(failed), len(profiles), strings.Join(failed, "; ")))
	}
	return results, nil
}
