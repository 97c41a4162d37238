package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/linesmerrill/jurychain-api/security"
)

// Wallet errors
var (
	ErrNotConnected        = errors.New("please connect your wallet first")
	ErrInvalidRecipient    = errors.New("invalid recipient address format")
	ErrInvalidAmount       = errors.New("invalid payment amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUserRejected        = errors.New("transaction cancelled by user")
	ErrTransactionFailed   = errors.New("transaction failed, please check your balance and try again")
)

// Wallet wraps a provider with the handful of calls needed to anchor a verdict
type Wallet struct {
	provider Provider
}

// NewWallet creates a wallet client around the given provider
func NewWallet(p Provider) *Wallet {
	return &Wallet{provider: p}
}

// TransferRequest is the eth_sendTransaction payload for a plain value transfer
type TransferRequest struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
	Gas   string `json:"gas"`
}

type nativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

type addChainRequest struct {
	ChainID           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	NativeCurrency    nativeCurrency `json:"nativeCurrency"`
	RPCURLs           []string       `json:"rpcUrls"`
	BlockExplorerURLs []string       `json:"blockExplorerUrls"`
}

// Accounts lists the accounts already exposed to us
func (w *Wallet) Accounts(ctx context.Context) ([]string, error) {
	return w.accounts(ctx, "eth_accounts")
}

// RequestAccounts asks the wallet to expose its accounts
func (w *Wallet) RequestAccounts(ctx context.Context) ([]string, error) {
	return w.accounts(ctx, "eth_requestAccounts")
}

func (w *Wallet) accounts(ctx context.Context, method string) ([]string, error) {
	raw, err := w.provider.Request(ctx, method)
	if err != nil {
		return nil, err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, nil
}

// ChainID returns the hex chain ID the wallet is connected to
func (w *Wallet) ChainID(ctx context.Context) (string, error) {
	raw, err := w.provider.Request(ctx, "eth_chainId")
	if err != nil {
		return "", err
	}
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return "", fmt.Errorf("failed to decode chain id: %w", err)
	}
	return id, nil
}

// OnNetwork reports whether the wallet is connected to n
func (w *Wallet) OnNetwork(ctx context.Context, n Network) (bool, error) {
	id, err := w.ChainID(ctx)
	if err != nil {
		return false, err
	}
	return id == n.ChainID, nil
}

// Balance returns the latest balance of address in wei
func (w *Wallet) Balance(ctx context.Context, address string) (*big.Int, error) {
	raw, err := w.provider.Request(ctx, "eth_getBalance", address, "latest")
	if err != nil {
		return nil, err
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		return nil, fmt.Errorf("failed to decode balance: %w", err)
	}
	return ParseHex(hex)
}

// SendTransfer sends value wei from one account to another and returns the
// transaction hash. The hash is returned as soon as the wallet accepts the
// transaction; inclusion in a block is not awaited.
func (w *Wallet) SendTransfer(ctx context.Context, from, to string, value *big.Int) (string, error) {
	if err := checkParties(from, to); err != nil {
		return "", err
	}
	if value == nil || value.Sign() <= 0 {
		return "", ErrInvalidAmount
	}

	balance, err := w.Balance(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch balance: %w", err)
	}
	if value.Cmp(balance) > 0 {
		return "", ErrInsufficientBalance
	}
	return w.send(ctx, from, to, value)
}

// SendEther is SendTransfer with a decimal ether amount, checked against the
// sender's balance in ether
func (w *Wallet) SendEther(ctx context.Context, from, to, amount string) (string, error) {
	if err := checkParties(from, to); err != nil {
		return "", err
	}
	value, err := EtherToWei(amount)
	if err != nil || value.Sign() <= 0 {
		return "", ErrInvalidAmount
	}

	balance, err := w.Balance(ctx, from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch balance: %w", err)
	}
	if !security.IsValidPaymentAmount(amount, WeiToEther(balance, 18)) {
		return "", ErrInsufficientBalance
	}
	return w.send(ctx, from, to, value)
}

func checkParties(from, to string) error {
	if from == "" {
		return ErrNotConnected
	}
	if !security.IsValidEthAddress(to) {
		return ErrInvalidRecipient
	}
	return nil
}

func (w *Wallet) send(ctx context.Context, from, to string, value *big.Int) (string, error) {
	raw, err := w.provider.Request(ctx, "eth_sendTransaction", TransferRequest{
		From:  from,
		To:    to,
		Value: ToHex(value),
		Gas:   TransferGas,
	})
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) {
			switch rpcErr.Code {
			case CodeUserRejected:
				return "", ErrUserRejected
			case CodeInternalError:
				return "", ErrTransactionFailed
			}
		}
		return "", fmt.Errorf("failed to send payment: %w", err)
	}

	var hash string
	if err := json.Unmarshal(raw, &hash); err != nil {
		return "", fmt.Errorf("failed to decode transaction hash: %w", err)
	}
	return hash, nil
}

// SwitchNetwork asks the wallet to switch to n, adding the network first when the
// wallet does not know it
func (w *Wallet) SwitchNetwork(ctx context.Context, n Network) error {
	_, err := w.provider.Request(ctx, "wallet_switchEthereumChain", map[string]string{"chainId": n.ChainID})
	if err == nil {
		return nil
	}

	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != CodeUnrecognizedChain {
		return fmt.Errorf("failed to switch network: %w", err)
	}

	_, err = w.provider.Request(ctx, "wallet_addEthereumChain", addChainRequest{
		ChainID:   n.ChainID,
		ChainName: n.Name,
		NativeCurrency: nativeCurrency{
			Name:     n.Symbol,
			Symbol:   n.Symbol,
			Decimals: n.Decimals,
		},
		RPCURLs:           []string{n.RPCURL},
		BlockExplorerURLs: []string{n.ExplorerURL},
	})
	if err != nil {
		return fmt.Errorf("failed to add %s network: %w", n.Name, err)
	}
	return nil
}
