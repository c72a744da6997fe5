package types

// ExportOptions controls the optional columns of a selected-results export.
type ExportOptions struct {
	IncludeText     bool `json:"includeText"`
	IncludeMetadata bool `json:"includeMetadata"`
}

// ExportRequest is the body of POST /export/csv in the multi-step protocol.
type ExportRequest struct {
	FileIDs         []string `json:"file_ids"`
	IncludeText     bool     `json:"include_text"`
	IncludeMetadata bool     `json:"include_metadata"`
}

// ExportTransactionsRequest is the body of POST /export/csv in the single-call protocol.
type ExportTransactionsRequest struct {
	Transactions []Transaction `json:"transactions"`
}

// Artifact is a downloaded export and where it was delivered.
type Artifact struct {
	FileName string `json:"fileName"`
	Path     string `json:"path,omitempty"`
	Size     int    `json:"size"`
}
