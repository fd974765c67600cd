// Package flowlog describes the version 2 flow-log line layout and decides which
// records take part in aggregation.
package flowlog

import (
	"fmt"
	"strings"
)

// Field positions in a version 2 flow-log line.
const (
	FieldVersion = iota
	FieldAccountID
	FieldInterfaceID
	FieldSrcAddr
	FieldDstAddr
	FieldSrcPort
	FieldDstPort
	FieldProtocol
	FieldPackets
	FieldBytes
	FieldStart
	FieldEnd
	FieldAction
	FieldStatus

	// MinFields is the number of fields a usable record must have.
	MinFields
)

const (
	SupportedVersion = "2"
	ActionAccept     = "ACCEPT"
	StatusOK         = "OK"
)

// Split breaks a raw line into its whitespace-separated fields.
func Split(line string) []string {
	return strings.Fields(line)
}

// Record is a version 2 flow-log entry.
type Record struct {
	AccountID   string
	InterfaceID string
	SrcAddr     string
	DstAddr     string
	SrcPort     uint16
	DstPort     uint16
	Protocol    uint8
	Packets     uint64
	Bytes       uint64
	Start       int64
	End         int64
	Action      string
	Status      string
}

// String renders the record as a single flow-log line without a trailing newline.
func (r Record) String() string {
	return fmt.Sprintf("%s %s %s %s %s %d %d %d %d %d %d %d %s %s",
		SupportedVersion, r.AccountID, r.InterfaceID, r.SrcAddr, r.DstAddr,
		r.SrcPort, r.DstPort, r.Protocol, r.Packets, r.Bytes, r.Start, r.End,
		r.Action, r.Status)
}
