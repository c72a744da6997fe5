package types

// LocalFile describes a file on the local filesystem that is about to be submitted.
type LocalFile struct {
	Path     string `json:"path"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
	FileType string `json:"fileType"` // sniffed MIME type, e.g. "application/pdf"
}

// UploadedFile exists only while a submission is in flight.
type UploadedFile struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	Size     int64  `json:"size"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	FileID     string `json:"file_id"`
	FileName   string `json:"filename"`
	Size       int64  `json:"size"`
	UploadTime string `json:"upload_time"`
}

// FileSummary is one entry of GET /files.
type FileSummary struct {
	FileID               string  `json:"file_id"`
	FileName             string  `json:"filename,omitempty"`
	UploadTime           string  `json:"upload_time,omitempty"`
	ProcessingTime       float64 `json:"processing_time,omitempty"`
	TotalsCount          int     `json:"totals_count,omitempty"`
	TextExtractionMethod string  `json:"text_extraction_method,omitempty"`
}

// FileListResponse is returned by GET /files, newest first.
type FileListResponse struct {
	Files []FileSummary `json:"files"`
}

// DeleteResponse is returned by DELETE /file/{file_id}.
type DeleteResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}
