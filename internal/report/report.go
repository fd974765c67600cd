// Package report renders a finished model.Report as the plain-text output file.
package report

import (
	"FlowTagger/internal/model"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const outputPrefix = "output_"

// Format writes the two report sections in first-encountered order.
func Format(w io.Writer, rep *model.Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "Tag Counts:")
	fmt.Fprintln(bw, "Tag,Count")
	for _, row := range rep.Tags {
		fmt.Fprintf(bw, "%s,%d\n", row.Tag, row.Count)
	}
	fmt.Fprintln(bw)

	fmt.Fprintln(bw, "Port/Protocol Combination Counts:")
	fmt.Fprintln(bw, "Port,Protocol,Count")
	for _, row := range rep.PortProtocols {
		fmt.Fprintf(bw, "%s,%s,%d\n", row.Port, row.Protocol, row.Count)
	}

	return bw.Flush()
}

// OutputFileName derives the output file name from the flow-log argument,
// e.g. "logs/a.txt" becomes "output_logs_a.txt".
func OutputFileName(flowLogArg string) string {
	name := strings.ReplaceAll(flowLogArg, "/", "_")
	if filepath.Separator != '/' {
		name = strings.ReplaceAll(name, string(filepath.Separator), "_")
	}
	return outputPrefix + name
}

// WriteFile writes the report to path. The content goes to a temporary file in the
// same directory first, so a failed write never leaves a partial report behind.
func WriteFile(path string, rep *model.Report) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary report file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := Format(tmp, rep); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
