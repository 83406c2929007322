// Package output renders CLI reports as aligned text tables or JSON.
package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents the output format type.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// FormatFor returns FormatJSON when asJSON is set.
func FormatFor(asJSON bool) Format {
	if asJSON {
		return FormatJSON
	}
	return FormatText
}

// Formatter is implemented by every report the CLI prints.
type Formatter interface {
	FormatText() string
	FormatJSON() ([]byte, error)
}

// FormatOutput formats the given Formatter based on the specified format.
func FormatOutput(f Formatter, format Format) (string, error) {
	switch format {
	case FormatJSON:
		data, err := f.FormatJSON()
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return f.FormatText(), nil
	}
}

// Write formats f and writes it to w followed by a newline.
// Nothing is written for an empty text report.
func Write(w io.Writer, f Formatter, format Format) error {
	s, err := FormatOutput(f, format)
	if err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
