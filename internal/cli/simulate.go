package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"radiosky/pkg/catalog"
	"radiosky/pkg/pipeline"
)

func newSimulateCmd(a *app) *cobra.Command {
	var cataloguePath string
	var outputPath string
	var planesDir string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Insert catalogue components into an empty image",
		Long: `Build an empty image from the configured geometry, insert every component of
a YAML or JSON catalogue, and save the cube as a YAML header plus a binary
payload. A PNG preview of the summed planes is written when output.preview
is set; --planes writes every channel and polarisation as its own PNG.`,
		Example: `  # Simulate with Lanczos insertion
  radiosky simulate --catalogue sources.yaml --output sim/image.yaml

  # Also write one picture per plane
  radiosky simulate --catalogue sources.yaml --planes sim/planes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.requireConfig()
			if err != nil {
				return err
			}
			comps, err := catalog.Load(cataloguePath)
			if err != nil {
				return err
			}

			p := pipeline.NewPipeline(&pipeline.Params{Config: cfg})
			sm, err := p.Simulate(comps, outputPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d components into %s\n", len(sm.Components), outputPath)

			if planesDir != "" {
				if err := p.SavePlanes(sm.Images[0], planesDir); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote planes to %s\n", planesDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cataloguePath, "catalogue", "", "Components to insert (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&outputPath, "output", "image.yaml", "Image header path; the payload goes next to it")
	cmd.Flags().StringVar(&planesDir, "planes", "", "Directory for one PNG per channel and polarisation")
	_ = cmd.MarkFlagRequired("catalogue")

	return cmd
}
