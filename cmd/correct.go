package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inscricoes/internal/config"
	"inscricoes/internal/csvfile"
	"inscricoes/internal/inscricao"
	"inscricoes/internal/report"
)

func newCorrectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "correct",
		Short: "Strip leading zeros from the last segment of every identifier",
		Long: `Rewrite the identifier column so the last period-separated segment
has no leading zeros ("12.034.0007" becomes "12.034.7"). Every other column
and the row order are kept. The input delimiter is detected unless
--delimiter is given; the output is always semicolon-delimited UTF-8.

Identifiers whose last segment is not a number stop the run unless
--on-invalid=keep, which leaves them unchanged and logs a warning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runCorrect(cmd.Context(), a)
			return err
		},
	}

	f := cmd.Flags()
	f.StringP("input", "i", "", `extract to correct (default "lauroMuller.csv")`)
	f.StringP("output", "o", "", `corrected output (default "LauroMullerCorrigido.csv")`)
	f.String("on-invalid", "", `what to do with non-numeric last segments: error or keep (default "error")`)
	f.String("delimiter", "", `input delimiter, or "auto" (default "auto")`)
	f.String("report", "", "write a YAML run report to this file")
	bindFlag(f, "input", "correct.input")
	bindFlag(f, "output", "correct.output")
	bindFlag(f, "on-invalid", "correct.on_invalid")
	bindFlag(f, "delimiter", "correct.delimiter")
	bindFlag(f, "report", "correct.report")
	return cmd
}

// runCorrect executes the correction pipeline with the loaded configuration.
func runCorrect(ctx context.Context, a *app) (inscricao.Stats, error) {
	cfg := a.cfg
	policy, err := inscricao.ParsePolicy(cfg.Correct.OnInvalid)
	if err != nil {
		return inscricao.Stats{}, err
	}
	delim, err := config.ParseDelimiter(cfg.Correct.Delimiter)
	if err != nil {
		return inscricao.Stats{}, err
	}

	rep := report.New("correct", cfg.Column)
	rep.ConfigFile = cfg.ConfigFile
	rep.Inputs = []string{cfg.Correct.Input}
	rep.Output = cfg.Correct.Output

	t, err := a.loader().Load(ctx, cfg.Correct.Input, delim)
	if err != nil {
		return inscricao.Stats{}, fmt.Errorf("load extract: %w", err)
	}

	fixed, stats, err := inscricao.CorrectTable(t, cfg.Column, policy)
	if err != nil {
		return stats, fmt.Errorf("%s: %w", cfg.Correct.Input, err)
	}
	for _, inv := range stats.Invalid {
		a.log.Warn().Int("row", inv.Row+1).Str("identifier", inv.Value).Msg("Left identifier unchanged")
		rep.Unchanged = append(rep.Unchanged, inv.Value)
	}

	if err := csvfile.Write(cfg.Correct.Output, fixed); err != nil {
		return stats, err
	}

	a.log.Info().
		Int("rows", stats.Rows).
		Int("changed", stats.Changed).
		Int("missing", stats.Missing).
		Int("invalid", len(stats.Invalid)).
		Str("output", cfg.Correct.Output).
		Msg("Correction finished")
	fmt.Fprintf(a.out, "✅ Correção concluída. Arquivo salvo em '%s'.\n", cfg.Correct.Output)

	rep.Counts["rows"] = stats.Rows
	rep.Counts["changed"] = stats.Changed
	rep.Counts["missing"] = stats.Missing
	rep.Counts["invalid"] = len(stats.Invalid)
	rep.Finish()
	if err := report.Write(cfg.Correct.Report, rep); err != nil {
		return stats, err
	}
	return stats, nil
}
