package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nainya/docdiff/pkg/docdiff"
)

func newBatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch LEFT:RIGHT...",
		Short: "Compare several pairs of document exports concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs := make([]docdiff.Pair, 0, len(args))
			for _, arg := range args {
				leftPath, rightPath, ok := strings.Cut(arg, ":")
				if !ok || leftPath == "" || rightPath == "" {
					return fmt.Errorf("invalid pair %q, want LEFT:RIGHT", arg)
				}
				left, err := os.ReadFile(leftPath)
				if err != nil {
					return fmt.Errorf("read %s: %w", leftPath, err)
				}
				right, err := os.ReadFile(rightPath)
				if err != nil {
					return fmt.Errorf("read %s: %w", rightPath, err)
				}
				pairs = append(pairs, docdiff.Pair{Name: arg, Left: left, Right: right})
			}

			svc, err := a.service()
			if err != nil {
				return err
			}
			diffs, err := svc.DiffBatch(cmd.Context(), pairs)
			if err != nil {
				return err
			}

			heading := color.New(color.Bold)
			if a.cfg.Output.NoColor {
				heading.DisableColor()
			}
			out := cmd.OutOrStdout()
			renderer := a.renderer()
			for i, diff := range diffs {
				heading.Fprintf(out, "== %s\n", pairs[i].Name)
				if err := renderer.Render(out, diff); err != nil {
					return err
				}
			}
			return nil
		},
	}

	addOutputFlags(cmd)
	cmd.Flags().Int64("max-concurrency", 0, "Comparisons run at once (0 picks a CPU based default)")

	return cmd
}
