package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/jurychain-api/client"
)

const defaultAPIURL = "http://localhost:8080"

type rootOptions struct {
	apiURL string
}

func (o *rootOptions) client() *client.Client {
	return client.NewClient(o.apiURL)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	apiURL := os.Getenv("JURYCHAIN_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	rootCmd := &cobra.Command{
		Use:          "juryctl",
		Short:        "Submit disputes to JuryChain and anchor verdicts on chain",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", apiURL,
		`Base URL of the JuryChain API (defaults to $JURYCHAIN_API_URL).`)

	rootCmd.AddCommand(
		newSubmitCmd(opts),
		newGetCmd(opts),
		newListCmd(opts),
		newStatsCmd(opts),
		newAnchorCmd(opts),
	)
	return rootCmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to print response: %w", err)
	}
	return nil
}
