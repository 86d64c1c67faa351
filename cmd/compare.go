package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inscricoes/internal/csvfile"
	"inscricoes/internal/reconcile"
	"inscricoes/internal/report"
)

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "List corrected records whose identifier is missing from the complete extract",
		Long: `Normalize the identifier column of both extracts (dashes unified,
periods and spaces removed) and write every record of the corrected extract
whose normalized identifier does not occur in the complete extract.

The output keeps the corrected extract's columns and row order and adds the
normalized identifier and a membership flag.

Inputs may be semicolon-delimited files, parcel shapefiles (.shp) or
"oracle:<query>" against the configured cadastre database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := runCompare(cmd.Context(), a)
			return err
		},
	}

	f := cmd.Flags()
	f.String("complete", "", `complete (reference) extract (default "LauroMullerCompleto.csv")`)
	f.String("corrected", "", `corrected (candidate) extract (default "LauroMullerCorrigido.csv")`)
	f.StringP("output", "o", "", `output file for missing records (default "inscricoes_faltantes.csv")`)
	f.String("report", "", "write a YAML run report to this file")
	f.Bool("review", false, "browse the missing records interactively afterwards")
	f.String("follow-up", "", `file review mode saves identifiers to (default "pendencias.txt")`)
	bindFlag(f, "complete", "compare.complete")
	bindFlag(f, "corrected", "compare.corrected")
	bindFlag(f, "output", "compare.output")
	bindFlag(f, "report", "compare.report")
	bindFlag(f, "review", "compare.review")
	bindFlag(f, "follow-up", "compare.follow_up")
	return cmd
}

// runCompare executes the reconciliation pipeline with the loaded
// configuration.
func runCompare(ctx context.Context, a *app) (*reconcile.Result, error) {
	cfg := a.cfg
	rep := report.New("compare", cfg.Column)
	rep.ConfigFile = cfg.ConfigFile
	rep.Inputs = []string{cfg.Compare.Complete, cfg.Compare.Corrected}
	rep.Output = cfg.Compare.Output

	loader := a.loader()
	complete, err := loader.Load(ctx, cfg.Compare.Complete, csvfile.Semicolon)
	if err != nil {
		return nil, fmt.Errorf("load complete extract: %w", err)
	}
	corrected, err := loader.Load(ctx, cfg.Compare.Corrected, csvfile.Semicolon)
	if err != nil {
		return nil, fmt.Errorf("load corrected extract: %w", err)
	}

	opts := reconcile.Options{
		Column:           cfg.Column,
		NormalizedColumn: cfg.Compare.NormalizedColumn,
		FlagColumn:       cfg.Compare.FlagColumn,
	}
	res, err := reconcile.Reconcile(complete, corrected, opts)
	if err != nil {
		return nil, err
	}

	if err := csvfile.Write(cfg.Compare.Output, res.Missing); err != nil {
		return nil, err
	}

	a.log.Info().
		Int("complete_rows", res.CompleteRows).
		Int("complete_distinct", res.CompleteDistinct).
		Int("corrected_rows", res.CorrectedRows).
		Int("matched", res.Matched).
		Int("missing", res.Missing.Len()).
		Str("output", cfg.Compare.Output).
		Msg("Comparison finished")
	fmt.Fprintf(a.out, "✅ Comparação concluída. Verifique o arquivo '%s'.\n", cfg.Compare.Output)

	rep.Counts["complete_rows"] = res.CompleteRows
	rep.Counts["complete_distinct"] = res.CompleteDistinct
	rep.Counts["corrected_rows"] = res.CorrectedRows
	rep.Counts["matched"] = res.Matched
	rep.Counts["missing"] = res.Missing.Len()
	rep.Finish()
	if err := report.Write(cfg.Compare.Report, rep); err != nil {
		return nil, err
	}

	if cfg.Compare.Review {
		reviewMissing(res.Missing, cfg.Column, cfg.Compare.FollowUp,
			[]string{cfg.Compare.NormalizedColumn, cfg.Compare.FlagColumn}, &a.log)
	}
	return res, nil
}
