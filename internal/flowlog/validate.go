package flowlog

import (
	"FlowTagger/internal/protocol"
	"strings"
)

// Reason is the outcome of checking a record.
type Reason int

const (
	Valid Reason = iota
	ReasonTooShort
	ReasonVersion
	ReasonAction
	ReasonStatus
	ReasonProtocol
)

var reasonNames = map[Reason]string{
	Valid:          "valid",
	ReasonTooShort: "too_short",
	ReasonVersion:  "version",
	ReasonAction:   "action",
	ReasonStatus:   "status",
	ReasonProtocol: "protocol",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// Check returns Valid, or the first rule the record breaks.
func Check(fields []string, protocols *protocol.Table) Reason {
	if len(fields) < MinFields {
		return ReasonTooShort
	}
	if strings.TrimSpace(fields[FieldVersion]) != SupportedVersion {
		return ReasonVersion
	}
	if strings.ToLower(strings.TrimSpace(fields[FieldAction])) != "accept" {
		return ReasonAction
	}
	if strings.ToLower(strings.TrimSpace(fields[FieldStatus])) != "ok" {
		return ReasonStatus
	}
	if !protocols.Contains(strings.TrimSpace(fields[FieldProtocol])) {
		return ReasonProtocol
	}
	return Valid
}

// Validate reports whether a tokenized record should be aggregated.
func Validate(fields []string, protocols *protocol.Table) bool {
	return Check(fields, protocols) == Valid
}
