package repository

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadAllowList reads the newline-delimited allow-list at path. Each line is
// trimmed and blank lines are skipped, so an empty OCR result can never match.
func LoadAllowList(path string) ([]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrAllowListNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open allow-list %s: %w", path, err)
	}
	defer f.Close()

	entries, err := ReadAllowList(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read allow-list %s: %w", path, err)
	}
	return entries, nil
}

// ReadAllowList parses allow-list entries from r, keeping file order
func ReadAllowList(r io.Reader) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
