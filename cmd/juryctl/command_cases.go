package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/jurychain-api/models"
)

func newSubmitCmd(opts *rootOptions) *cobra.Command {
	var req models.SubmitCaseRequest

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a dispute to the jury",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cs, err := opts.client().SubmitCase(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cs)
		},
	}
	cmd.Flags().StringVar(&req.ClaimantName, "claimant", "", "Name of the party bringing the dispute")
	cmd.Flags().StringVar(&req.RespondentName, "respondent", "", "Name of the party answering the dispute")
	cmd.Flags().StringVar(&req.Description, "description", "", "What happened, in at least 50 characters")
	cmd.Flags().StringVar(&req.EvidenceURL, "evidence-url", "", "Optional link to supporting evidence")
	_ = cmd.MarkFlagRequired("claimant")
	_ = cmd.MarkFlagRequired("respondent")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <case-id>",
		Short: "Show a single case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := opts.client().GetCase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), cs)
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every case, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cases, err := opts.client().GetCases(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cases) == 0 {
				fmt.Fprintln(out, "no cases yet")
				return nil
			}
			for _, cs := range cases {
				anchored := ""
				if cs.StoredOnchain {
					anchored = " (on chain)"
				}
				fmt.Fprintf(out, "%s\t%s v. %s\t%s%s\n", cs.ID, cs.Claimant, cs.Respondent, cs.Verdict, anchored)
			}
			return nil
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := opts.client().Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}
