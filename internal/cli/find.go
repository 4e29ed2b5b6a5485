package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"radiosky/pkg/catalog"
	"radiosky/pkg/pipeline"
)

func newFindCmd(a *app) *cobra.Command {
	var outputPath string
	var cores int

	cmd := &cobra.Command{
		Use:   "find IMAGE...",
		Short: "Find point components in saved images",
		Long: `Segment each image above the configured threshold and write one catalogue
with a Point component per segment. Images are processed concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.requireConfig()
			if err != nil {
				return err
			}

			p := pipeline.NewPipeline(&pipeline.Params{Config: cfg, NumCores: cores})
			results, summary, err := p.FindInFiles(cmd.Context(), args)
			if err != nil {
				return err
			}
			comps, err := pipeline.Collect(results)
			if err != nil {
				return err
			}
			if err := catalog.Save(outputPath, comps); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "%s: %d components (threshold %.4g)\n", r.Path, len(r.Components), r.Threshold)
			}
			fmt.Fprintf(out, "Found %d components in %d images in %s, written to %s\n",
				summary.Components, summary.Files, summary.Duration.Round(time.Millisecond), outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "components.yaml", "Catalogue to write (.yaml, .yml or .json)")
	cmd.Flags().IntVar(&cores, "cores", 0, "Images processed at once (default processing.numCores)")

	return cmd
}
