package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/moyoez/moneylens-go/tool"
	"github.com/moyoez/moneylens-go/types"
)

// PreviewLength is how much extracted text a result card shows.
const PreviewLength = 200

// InitUI turns colors off when asked to.
func InitUI(noColor bool) {
	if noColor {
		color.NoColor = true
	}
}

func Success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(os.Stdout, "✓ %s\n", fmt.Sprintf(format, args...))
}

func Error(format string, args ...any) {
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

func Warning(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stdout, "⚠ %s\n", fmt.Sprintf(format, args...))
}

func Info(format string, args ...any) {
	color.New(color.FgCyan).Fprintf(os.Stdout, "ℹ %s\n", fmt.Sprintf(format, args...))
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// FormatCurrency renders value like "$1,234.56" or "-€40.50". Unknown currencies get the
// code as a prefix ("CHF 10.00").
func FormatCurrency(value decimal.Decimal, currency string) string {
	currency = strings.ToUpper(currency)
	if currency == "" {
		currency = types.DefaultCurrency
	}
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}
	sign := ""
	if value.IsNegative() {
		sign = "-"
		value = value.Abs()
	}
	fixed := value.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + symbol + groupThousands(whole) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// PrintResult writes one result card.
func PrintResult(w io.Writer, r types.ProcessingResult, selected bool) {
	mark := " "
	if selected {
		mark = "*"
	}
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "%s %s", mark, r.FileName)
	fmt.Fprintf(w, "  (%s)\n", r.FileID)

	fmt.Fprintf(w, "  Method: %s   Processing time: %.2fs", strings.ToUpper(r.ParsedText.Method), r.ProcessingTime)
	if r.UploadTime != "" {
		fmt.Fprintf(w, "   Uploaded: %s", r.UploadTime)
	}
	fmt.Fprintln(w)

	if len(r.Totals) == 0 {
		color.New(color.FgYellow).Fprintln(w, "  No financial totals found")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, t := range r.Totals {
			line := ""
			if t.LineNumber != nil {
				line = fmt.Sprintf("line %d", *t.LineNumber)
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", t.Label, FormatCurrency(t.Value, t.Currency), line)
		}
		_ = tw.Flush()
	}
	if len(r.Transactions) > 0 {
		fmt.Fprintf(w, "  %d transactions\n", len(r.Transactions))
	}
	if text := strings.TrimSpace(r.ParsedText.Text); text != "" {
		preview := strings.Join(strings.Fields(text), " ")
		color.New(color.Faint).Fprintf(w, "  %s\n", tool.TruncateText(preview, PreviewLength))
	}
}

// PrintArtifact reports where an export landed.
func PrintArtifact(a *types.Artifact) {
	where := a.Path
	if where == "" {
		where = a.FileName
	}
	Success("Saved %s (%s)", where, tool.FormatFileSize(int64(a.Size)))
}
