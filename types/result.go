package types

import "github.com/shopspring/decimal"

// Extraction methods reported in ParsedText.Method.
const (
	MethodText = "text"
	MethodOCR  = "ocr"
)

// DefaultCurrency is used when the remote omits a currency.
const DefaultCurrency = "USD"

type ParsedText struct {
	Text       string   `json:"text"`
	Method     string   `json:"method"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// FinancialTotal is one labeled amount found in the document.
type FinancialTotal struct {
	Label      string          `json:"label"`
	Value      decimal.Decimal `json:"value"`
	Currency   string          `json:"currency"`
	LineNumber *int            `json:"line_number,omitempty"`
}

// Transaction is one statement line. Amount is signed.
type Transaction struct {
	Date          string              `json:"date"`
	Description   string              `json:"description"`
	Amount        decimal.Decimal     `json:"amount"`
	Type          string              `json:"type"` // "credit" or "debit"
	Balance       decimal.NullDecimal `json:"balance"`
	Currency      string              `json:"currency,omitempty"`
	SourceAccount string              `json:"source_account,omitempty"`
}

// ProcessingResult is the unit kept in the result store, keyed by FileID.
// Totals and Transactions are in extraction order.
type ProcessingResult struct {
	FileID         string           `json:"file_id"`
	FileName       string           `json:"filename"`
	UploadTime     string           `json:"upload_time,omitempty"`
	ProcessingTime float64          `json:"processing_time"`
	ParsedText     ParsedText       `json:"parsed_text"`
	Totals         []FinancialTotal `json:"totals"`
	Transactions   []Transaction    `json:"transactions,omitempty"`
	Metadata       map[string]any   `json:"metadata,omitempty"`
}

// Normalize fills defaults the remote may leave out. It never reorders totals or transactions.
func (r *ProcessingResult) Normalize() {
	if r.ProcessingTime < 0 {
		r.ProcessingTime = 0
	}
	for i := range r.Totals {
		if r.Totals[i].Currency == "" {
			r.Totals[i].Currency = DefaultCurrency
		}
		if ln := r.Totals[i].LineNumber; ln != nil && *ln <= 0 {
			r.Totals[i].LineNumber = nil
		}
	}
	if r.Metadata == nil {
		r.Metadata = map[string]any{}
	}
}

// Clone returns a copy that shares no slices or maps with r.
func (r ProcessingResult) Clone() ProcessingResult {
	out := r
	out.Totals = append([]FinancialTotal(nil), r.Totals...)
	out.Transactions = append([]Transaction(nil), r.Transactions...)
	if r.Metadata != nil {
		out.Metadata = make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
