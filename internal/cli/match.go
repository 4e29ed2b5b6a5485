package cli

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"radiosky/pkg/catalog"
	"radiosky/pkg/skycomponent"
	"radiosky/pkg/wcs"
)

const arcsec = math.Pi / (180 * 3600)

func newMatchCmd() *cobra.Command {
	var tolerance float64

	cmd := &cobra.Command{
		Use:   "match CATALOGUE_A CATALOGUE_B",
		Short: "Cross-match two catalogues by position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			left, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			right, err := catalog.Load(args[1])
			if err != nil {
				return err
			}

			matches := skycomponent.FindSkycomponentMatches(left, right, tolerance*arcsec)
			out := cmd.OutOrStdout()
			for _, m := range matches {
				fmt.Fprintf(out, "%s\t%s\t%.3f\"\n", left[m.I].Name(), right[m.J].Name(), m.Separation/arcsec)
			}
			fmt.Fprintf(out, "%d of %d components matched within %g\"\n", len(matches), len(left), tolerance)
			return nil
		},
	}

	cmd.Flags().Float64Var(&tolerance, "tolerance", 5, "Largest accepted separation in arcseconds")

	return cmd
}

func newNearestCmd() *cobra.Command {
	var ra, dec float64

	cmd := &cobra.Command{
		Use:   "nearest CATALOGUE",
		Short: "Report the component closest to a direction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comps, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			best, sep := skycomponent.FindNearestComponent(wcs.NewDirectionDeg(ra, dec), comps)
			if best == nil {
				return fmt.Errorf("catalogue %s is empty", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s at %s, %.3f\" away\n", best.Name(), best.Direction(), sep/arcsec)
			return nil
		},
	}

	cmd.Flags().Float64Var(&ra, "ra", 0, "Right ascension in degrees")
	cmd.Flags().Float64Var(&dec, "dec", 0, "Declination in degrees")

	return cmd
}
