package types

import "github.com/shopspring/decimal"

// StatementTotals is the fixed totals object of the single-call parse response.
type StatementTotals struct {
	Inflow     decimal.Decimal `json:"inflow"`
	Outflow    decimal.Decimal `json:"outflow"`
	Net        decimal.Decimal `json:"net"`
	FlowVolume decimal.Decimal `json:"flow_volume"`
}

// StatementResult is returned by POST /parse/pdf.
type StatementResult struct {
	Totals       StatementTotals `json:"totals"`
	Transactions []Transaction   `json:"transactions"`
	Metadata     map[string]any  `json:"metadata"`
}
