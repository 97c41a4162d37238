package models

// CaseStats holds the dashboard counters
type CaseStats struct {
	TotalCases    int64 `json:"totalCases"`
	ResolvedToday int64 `json:"resolvedToday"`
	AnchoredCases int64 `json:"anchoredCases"`
	ActiveJurors  int   `json:"activeJurors"`
}

// ChainInfo describes the network and treasury a wallet should use to anchor a verdict
type ChainInfo struct {
	ChainID         string `json:"chainId"`
	ChainName       string `json:"chainName"`
	RPCURL          string `json:"rpcUrl"`
	ExplorerURL     string `json:"explorerUrl"`
	Symbol          string `json:"symbol"`
	Decimals        int    `json:"decimals"`
	TreasuryAddress string `json:"treasuryAddress"`
	TreasuryURL     string `json:"treasuryUrl"`
	ProofValueWei   string `json:"proofValueWei"`
	Gas             string `json:"gas"`
}

// CaseEvent is pushed to live feed subscribers
type CaseEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// HealthCheckResponse returns the health check response duh
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
