// Package source reads MCSK statements from files and watches them for
// changes.
package source

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Statement is one MCSK sentence and where it was read from.
type Statement struct {
	Text string `json:"text"`
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

// ParseStatements reads one statement per line. Blank lines and lines
// starting with # are skipped; surrounding whitespace is trimmed.
func ParseStatements(r io.Reader, file string) ([]Statement, error) {
	var out []Statement
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		out = append(out, Statement{Text: text, File: file, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read statements: %w", err)
	}
	return out, nil
}

// ReadFiles parses every file in order.
func ReadFiles(paths []string) ([]Statement, error) {
	var out []Statement
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		stmts, err := ParseStatements(f, path)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, stmts...)
	}
	return out, nil
}

// Texts returns the statement texts in order.
func Texts(stmts []Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.Text
	}
	return out
}
