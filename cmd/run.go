package main

import (
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Correct an extract, then compare the result against the complete extract",
		Long: `Run the correction pipeline and feed its output to the comparison
pipeline as the corrected extract. Flags are the union of both commands;
--corrected-output names the intermediate file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := runCorrect(cmd.Context(), a); err != nil {
				return err
			}
			a.cfg.Compare.Corrected = a.cfg.Correct.Output
			_, err := runCompare(cmd.Context(), a)
			return err
		},
	}

	f := cmd.Flags()
	f.StringP("input", "i", "", `extract to correct (default "lauroMuller.csv")`)
	f.String("corrected-output", "", `corrected extract (default "LauroMullerCorrigido.csv")`)
	f.String("on-invalid", "", `what to do with non-numeric last segments: error or keep (default "error")`)
	f.String("delimiter", "", `input delimiter, or "auto" (default "auto")`)
	f.String("complete", "", `complete (reference) extract (default "LauroMullerCompleto.csv")`)
	f.StringP("output", "o", "", `output file for missing records (default "inscricoes_faltantes.csv")`)
	f.Bool("review", false, "browse the missing records interactively afterwards")
	f.String("follow-up", "", `file review mode saves identifiers to (default "pendencias.txt")`)
	bindFlag(f, "input", "correct.input")
	bindFlag(f, "corrected-output", "correct.output")
	bindFlag(f, "on-invalid", "correct.on_invalid")
	bindFlag(f, "delimiter", "correct.delimiter")
	bindFlag(f, "complete", "compare.complete")
	bindFlag(f, "output", "compare.output")
	bindFlag(f, "review", "compare.review")
	bindFlag(f, "follow-up", "compare.follow_up")
	return cmd
}
