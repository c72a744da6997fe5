package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm asks a yes/no question on stdin.
func Confirm(message string, defaultValue bool) (bool, error) {
	return ConfirmFrom(os.Stdin, os.Stdout, message, defaultValue)
}

func ConfirmFrom(in io.Reader, out io.Writer, message string, defaultValue bool) (bool, error) {
	defaultStr := "y/N"
	if defaultValue {
		defaultStr = "Y/n"
	}
	fmt.Fprintf(out, "%s [%s]: ", message, defaultStr)

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		if err == io.EOF {
			return defaultValue, nil
		}
		return false, err
	}
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return defaultValue, nil
	}
	return trimmed == "y" || trimmed == "yes", nil
}
