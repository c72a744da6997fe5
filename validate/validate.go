// Package validate checks a candidate file before anything is sent to the MoneyLens API.
package validate

import (
	"fmt"
	"strings"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

const (
	PDFContentType = "application/pdf"
	MaxFileSize    = 10 * 1024 * 1024 // 10 MiB
)

const (
	MsgNoFile      = "No file selected"
	MsgNotPDF      = "File must be a PDF"
	MsgTooManyFile = "Only one file can be uploaded at a time"
	MsgBadMode     = "Mode must be one of auto, text, ocr"
)

// Candidate is what the validator needs to know about a file.
type Candidate struct {
	Name        string
	Size        int64
	ContentType string
}

// FromLocalFile builds a Candidate from sniffed local file info; nil means no file.
func FromLocalFile(f *types.LocalFile) *Candidate {
	if f == nil {
		return nil
	}
	return &Candidate{Name: f.FileName, Size: f.Size, ContentType: f.FileType}
}

type Constraints struct {
	AllowedType string
	MaxSize     int64
}

func DefaultConstraints() Constraints {
	return Constraints{AllowedType: PDFContentType, MaxSize: MaxFileSize}
}

// SizeMessage is the oversize failure, e.g. "File size must be less than 10.00 MB".
func (c Constraints) SizeMessage() string {
	return fmt.Sprintf("File size must be less than %s", tool.FormatFileSize(c.MaxSize))
}

// Validate returns the failures for one candidate, in check order. Empty means valid.
func Validate(f *Candidate, c Constraints) []string {
	var errs []string
	if f == nil {
		return append(errs, MsgNoFile)
	}
	if !strings.EqualFold(f.ContentType, c.AllowedType) {
		errs = append(errs, MsgNotPDF)
	}
	if f.Size > c.MaxSize {
		errs = append(errs, c.SizeMessage())
	}
	return errs
}

// ValidateSubmission applies the one-file-per-submission rule before Validate.
func ValidateSubmission(files []*Candidate, c Constraints) []string {
	switch len(files) {
	case 0:
		return []string{MsgNoFile}
	case 1:
		return Validate(files[0], c)
	default:
		return []string{MsgTooManyFile}
	}
}

// ValidateMode rejects modes other than auto, text and ocr.
func ValidateMode(mode types.ParseMode) []string {
	if mode.Valid() {
		return nil
	}
	return []string{MsgBadMode}
}

// Error carries validation failures. It is shown inline, never on the error banner.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, "; ")
}

// AsError wraps a non-empty failure list, or returns nil.
func AsError(msgs []string) error {
	if len(msgs) == 0 {
		return nil
	}
	return &Error{Messages: msgs}
}
