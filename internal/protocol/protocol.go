package protocol

// Table maps IANA protocol numbers, as they appear in flow logs, to lower-case names.
// A Table is read-only once built.
type Table struct {
	names map[string]string
}

// builtin is the fixed protocol table used by every run.
var builtin = NewTable(map[string]string{
	"1":   "icmp",
	"6":   "tcp",
	"17":  "udp",
	"41":  "ipv6",
	"58":  "icmpv6",
	"89":  "ospf",
	"132": "sctp",
	"133": "fgs",
	"136": "pmtp",
	"255": "reserved",
})

// Default returns the built-in protocol table.
func Default() *Table {
	return builtin
}

// NewTable copies entries into a new Table.
func NewTable(entries map[string]string) *Table {
	names := make(map[string]string, len(entries))
	for num, name := range entries {
		names[num] = name
	}
	return &Table{names: names}
}

// Name returns the protocol name for a protocol number.
func (t *Table) Name(number string) (string, bool) {
	name, ok := t.names[number]
	return name, ok
}

// Contains reports whether the protocol number is known.
func (t *Table) Contains(number string) bool {
	_, ok := t.names[number]
	return ok
}

// Len returns the number of known protocols.
func (t *Table) Len() int {
	return len(t.names)
}
