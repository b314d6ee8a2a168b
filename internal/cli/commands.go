package cli

import (
	"fmt"

	"github.com/couchcryptid/quakewatch/internal/domain"
	"github.com/spf13/cobra"
)

func newListCommand(deps Dependencies, opts *globalOptions) *cobra.Command {
	var maxDepth float64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hypocenter/seismic-intensity reports in feed order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(opts.format)
			if err != nil {
				return err
			}
			if err := validateMaxDepth(maxDepth); err != nil {
				return err
			}

			records := fetch(cmd, deps, opts, maxDepth)
			if format == FormatTable {
				headers := []string{"ID", "LAT", "LON", "DEPTH_KM", "MAG", "AREA"}
				return writeLine(cmd.OutOrStdout(), renderTable(headers, quakeRows(records)))
			}
			text, err := renderPayload(records, format)
			if err != nil {
				return err
			}
			return writeLine(cmd.OutOrStdout(), text)
		},
	}

	cmd.Flags().Float64Var(&maxDepth, "max-depth", 0, "Only include hypocenters at most this many kilometres deep.")
	return cmd
}

func newAverageCommand(deps Dependencies, opts *globalOptions) *cobra.Command {
	var maxDepth float64

	cmd := &cobra.Command{
		Use:   "average",
		Short: "Print the mean hypocenter depth in kilometres.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := ParseFormat(opts.format)
			if err != nil {
				return err
			}
			if err := validateMaxDepth(maxDepth); err != nil {
				return err
			}

			records := fetch(cmd, deps, opts, maxDepth)
			s := summary{Count: len(records), AverageDepthKm: domain.AverageDepth(records)}
			if format == FormatTable {
				return writeLine(cmd.OutOrStdout(), fmt.Sprintf("average depth: %.2f km (%d records)", s.AverageDepthKm, s.Count))
			}
			text, err := renderPayload(s, format)
			if err != nil {
				return err
			}
			return writeLine(cmd.OutOrStdout(), text)
		},
	}

	cmd.Flags().Float64Var(&maxDepth, "max-depth", 0, "Only include hypocenters at most this many kilometres deep.")
	return cmd
}
