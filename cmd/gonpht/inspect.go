package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hed1ad/gonpht/pkg/provider"
)

func newInspectCmd() *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the metadata and view sizes of a provider file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := provider.ParseFormat(formatName)
			if err != nil {
				return err
			}
			p, err := provider.Read(args[0], format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "number_of_directions: %d\n", p.Meta.NumberOfDirections)
			fmt.Fprintf(out, "run_id: %s\n", p.Meta.RunID)
			fmt.Fprintf(out, "created_at: %s\n", p.Meta.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "samples: %d\n", p.Meta.Samples)
			fmt.Fprintf(out, "failures: %d\n", p.Meta.Failures)
			if err := p.Validate(); err != nil {
				fmt.Fprintf(out, "invalid: %v\n", err)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "VIEW\tLABELS\tSAMPLES")
			for _, s := range p.Summary() {
				fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Key, s.Labels, s.Samples)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&formatName, "format", string(provider.FormatAuto), "input format: auto, gob, json or yaml")

	return cmd
}
