// Package document loads and splits local files for ingestion into the
// store.
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// File is a loaded text file with its source metadata.
type File struct {
	Content  string
	Metadata map[string]any
}

// LoadFromFile reads a UTF-8 text file and records where it came from.
func LoadFromFile(path string) (*File, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("file %s contains invalid UTF-8", path)
	}
	return &File{
		Content: string(content),
		Metadata: map[string]any{
			"file":      path,
			"filename":  filepath.Base(path),
			"extension": filepath.Ext(path),
			"size":      len(content),
		},
	}, nil
}

// Chunk splits text into word-bounded pieces of at most size words, with
// overlap words repeated between consecutive chunks. size <= 0 returns the
// whole text as one chunk.
func Chunk(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if size <= 0 || len(words) <= size {
		return []string{strings.Join(words, " ")}
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	step := size - overlap
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
