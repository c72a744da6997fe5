package types

// ParseMode selects the extraction strategy on the remote side.
type ParseMode string

const (
	ParseModeAuto ParseMode = "auto"
	ParseModeText ParseMode = "text"
	ParseModeOCR  ParseMode = "ocr"
)

// Valid reports whether m is one of auto, text or ocr.
func (m ParseMode) Valid() bool {
	switch m {
	case ParseModeAuto, ParseModeText, ParseModeOCR:
		return true
	}
	return false
}

// Protocol selects which remote API shape the client talks to.
type Protocol string

const (
	// ProtocolMultiStep is upload -> process -> result with persisted history.
	ProtocolMultiStep Protocol = "multi-step"
	// ProtocolSingleCall is one parse call per file and no server-side history.
	ProtocolSingleCall Protocol = "single-call"
)
