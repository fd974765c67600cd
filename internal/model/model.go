package model

import "time"

// UntaggedTag is assigned to records whose (port, protocol) has no lookup entry.
const UntaggedTag = "Untagged"

// TagCount is one row of the tag section of a report.
type TagCount struct {
	Tag   string
	Count uint64
}

// PortProtocolCount is one row of the port/protocol section of a report.
type PortProtocolCount struct {
	Port     string
	Protocol string
	Count    uint64
}

// Stats summarizes a single pass over a flow-log file.
type Stats struct {
	Lines    uint64
	Accepted uint64
	// Rejected is keyed by the rejection reason name (e.g. "action", "status").
	Rejected map[string]uint64
}

// RejectedTotal returns the number of lines that failed validation.
func (s Stats) RejectedTotal() uint64 {
	var total uint64
	for _, n := range s.Rejected {
		total += n
	}
	return total
}

// Report is the result of classifying and aggregating one flow-log file.
// Both count slices are in first-encountered order.
type Report struct {
	Source        string
	GeneratedAt   time.Time
	Tags          []TagCount
	PortProtocols []PortProtocolCount
	Stats         Stats
}
