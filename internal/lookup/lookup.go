package lookup

import (
	"FlowTagger/internal/model"
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// maxLineSize bounds a single line of either input file.
const maxLineSize = 1024 * 1024

// Key identifies a lookup entry by destination port and lower-case protocol name.
type Key struct {
	Port     string
	Protocol string
}

// NewKey builds a Key, normalizing whitespace and protocol case.
func NewKey(port, protocol string) Key {
	return Key{
		Port:     strings.TrimSpace(port),
		Protocol: strings.ToLower(strings.TrimSpace(protocol)),
	}
}

// Table maps (port, protocol) keys to tags.
type Table map[Key]string

// Tag returns the tag for a key, if any.
func (t Table) Tag(key Key) (string, bool) {
	tag, ok := t[key]
	return tag, ok
}

// TagOrDefault returns the tag for a key, or model.UntaggedTag.
func (t Table) TagOrDefault(key Key) string {
	if tag, ok := t[key]; ok {
		return tag
	}
	return model.UntaggedTag
}

// Len returns the number of entries.
func (t Table) Len() int {
	return len(t)
}

// Load reads a lookup table file. A file that cannot be opened yields a
// *model.NotFoundError matching model.ErrLookupTableNotFound.
func Load(path string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, model.NewNotFoundError(model.LookupTable, path, err)
	}
	defer file.Close()

	table, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup table '%s': %w", path, err)
	}
	return table, nil
}

// Parse reads "<dstport> <protocol> <tag>" rows. Blank rows and rows with fewer than
// three fields are skipped. A repeated key keeps the last tag seen.
func Parse(r io.Reader) (Table, error) {
	table := make(Table)

	scanner := newScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		columns := strings.Fields(line)
		if len(columns) < 3 {
			continue
		}
		table[NewKey(columns[0], columns[1])] = strings.TrimSpace(columns[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return table, nil
}

// newScanner returns a line scanner that accepts rows up to maxLineSize.
func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return scanner
}
