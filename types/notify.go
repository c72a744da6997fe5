package types

// Notification represents a notification message structure
type Notification struct {
	Type    string         `json:"type,omitempty"`    // Notification type, e.g. "status", "result_added", etc.
	Title   string         `json:"title,omitempty"`   // Notification title
	Message string         `json:"message,omitempty"` // Notification message/content
	Data    map[string]any `json:"data,omitempty"`    // Additional data fields
}

const (
	NotifyTypeStatus           = "status"
	NotifyTypePhase            = "phase"
	NotifyTypeError            = "error"
	NotifyTypeErrorCleared     = "error_cleared"
	NotifyTypeResultAdded      = "result_added"
	NotifyTypeResultRemoved    = "result_removed"
	NotifyTypeResultsReloaded  = "results_reloaded"
	NotifyTypeSelectionChanged = "selection_changed"
	NotifyTypeExportReady      = "export_ready"
)
