package main

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/linesmerrill/jurychain-api/chain"
	"github.com/linesmerrill/jurychain-api/models"
)

type anchorOptions struct {
	from          string
	rpcURL        string
	switchNetwork bool
}

func newAnchorCmd(opts *rootOptions) *cobra.Command {
	aOpts := &anchorOptions{}

	cmd := &cobra.Command{
		Use:   "anchor <case-id>",
		Short: "Pay the proof fee to the treasury and attach the transaction to a case",
		Long: `Sends the proof value from an unlocked node account to the treasury, then
records the transaction hash against the case. The node must be able to sign for
the --from account.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnchor(cmd, opts, aOpts, args[0])
		},
	}
	cmd.Flags().StringVar(&aOpts.from, "from", "", "Account that pays the proof fee")
	cmd.Flags().StringVar(&aOpts.rpcURL, "rpc-url", "", "JSON-RPC endpoint (defaults to the one the API advertises)")
	cmd.Flags().BoolVar(&aOpts.switchNetwork, "switch-network", false, "Ask the node to switch to the API's network first")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func runAnchor(cmd *cobra.Command, opts *rootOptions, aOpts *anchorOptions, caseID string) error {
	ctx := cmd.Context()
	api := opts.client()

	cs, err := api.GetCase(ctx, caseID)
	if err != nil {
		return err
	}
	if cs.StoredOnchain {
		return fmt.Errorf("case %s is already anchored in %s", cs.ID, cs.TransactionHash)
	}

	info, err := api.ChainInfo(ctx)
	if err != nil {
		return err
	}
	if !chain.IsValidChainID(info.ChainID) {
		return fmt.Errorf("api advertises unsupported chain %q", info.ChainID)
	}
	value, ok := new(big.Int).SetString(info.ProofValueWei, 10)
	if !ok {
		return fmt.Errorf("api returned an invalid proof value %q", info.ProofValueWei)
	}

	network := chain.Network{
		ChainID:     info.ChainID,
		Name:        info.ChainName,
		RPCURL:      info.RPCURL,
		ExplorerURL: info.ExplorerURL,
		Symbol:      info.Symbol,
		Decimals:    info.Decimals,
	}
	rpcURL := aOpts.rpcURL
	if rpcURL == "" {
		rpcURL = network.RPCURL
	}

	wallet := chain.NewWallet(chain.NewRPCProvider(rpcURL, nil))
	if aOpts.switchNetwork {
		if err := wallet.SwitchNetwork(ctx, network); err != nil {
			return err
		}
	}
	onNetwork, err := wallet.OnNetwork(ctx, network)
	if err != nil {
		return err
	}
	if !onNetwork {
		return fmt.Errorf("node at %s is not on %s, rerun with --switch-network", rpcURL, network.Name)
	}

	hash, err := wallet.SendTransfer(ctx, aOpts.from, info.TreasuryAddress, value)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "sent %s %s to %s in %s\n",
		chain.WeiToEther(value, 4), network.Symbol, info.TreasuryAddress, hash)

	resp, err := api.StoreVerdict(ctx, models.StoreVerdictRequest{
		CaseID:          cs.ID,
		Verdict:         cs.FinalVerdict,
		TransactionHash: hash,
	})
	if err != nil {
		return fmt.Errorf("payment %s went through but the proof was not recorded: %w", hash, err)
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
