// Package engine runs the classification pass over a flow-log file.
package engine

import (
	"FlowTagger/internal/aggregator"
	"FlowTagger/internal/flowlog"
	"FlowTagger/internal/lookup"
	"FlowTagger/internal/model"
	"FlowTagger/internal/protocol"
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineSize = 1024 * 1024

// Run classifies every record of the flow-log file at path. A file that cannot be
// opened yields a *model.NotFoundError matching model.ErrFlowLogNotFound.
func Run(path string, table lookup.Table, protocols *protocol.Table) (*model.Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, model.NewNotFoundError(model.FlowLog, path, err)
	}
	defer file.Close()

	report, err := Process(file, table, protocols)
	if err != nil {
		return nil, fmt.Errorf("failed to read flow log '%s': %w", path, err)
	}
	report.Source = path
	return report, nil
}

// Process classifies the records read from r. Invalid records are counted by
// rejection reason and otherwise ignored.
func Process(r io.Reader, table lookup.Table, protocols *protocol.Table) (*model.Report, error) {
	agg := aggregator.New()
	stats := model.Stats{Rejected: make(map[string]uint64)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++

		fields := flowlog.Split(scanner.Text())
		if reason := flowlog.Check(fields, protocols); reason != flowlog.Valid {
			stats.Rejected[reason.String()]++
			continue
		}

		tag, key := Classify(fields, table, protocols)
		agg.Add(tag, key)
		stats.Accepted++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return &model.Report{
		GeneratedAt:   time.Now().UTC(),
		Tags:          agg.Tags(),
		PortProtocols: agg.PortProtocols(),
		Stats:         stats,
	}, nil
}

// Classify resolves the tag and (port, protocol) key of a record that passed validation.
func Classify(fields []string, table lookup.Table, protocols *protocol.Table) (string, lookup.Key) {
	port := strings.TrimSpace(fields[flowlog.FieldDstPort])
	name, _ := protocols.Name(strings.TrimSpace(fields[flowlog.FieldProtocol]))

	key := lookup.Key{Port: port, Protocol: name}
	return table.TagOrDefault(key), key
}
