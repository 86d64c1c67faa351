package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inscricoes/internal/inscricao"
)

// loadFollowUps returns the raw identifiers stored in the follow-up file.
// If the file does not exist, an empty slice is returned without error.
func loadFollowUps(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // nothing flagged yet
		}
		return nil, err
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, scanner.Err()
}

// saveFollowUp appends id to the follow-up file unless an identifier with
// the same normalized form is already there. It reports whether a line was
// written.
func saveFollowUp(path, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, nil
	}
	normNew := inscricao.Normalize(id)
	existing, err := loadFollowUps(path)
	if err != nil {
		return false, err
	}
	for _, e := range existing {
		if inscricao.Normalize(e) == normNew {
			return false, nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if _, err = fmt.Fprintln(f, id); err != nil {
		return false, err
	}
	return true, nil
}
