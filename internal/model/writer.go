package model

// Writer defines a generic interface for persisting a finished report to an external store.
type Writer interface {
	// Name identifies the writer type in logs.
	Name() string

	// Write persists a complete report.
	Write(report *Report) error

	// Close releases any connection held by the writer.
	Close() error
}
