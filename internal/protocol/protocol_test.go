package protocol

import "testing"

func TestDefaultTable(t *testing.T) {
	tests := []struct {
		number string
		name   string
		ok     bool
	}{
		{"1", "icmp", true},
		{"6", "tcp", true},
		{"17", "udp", true},
		{"58", "icmpv6", true},
		{"255", "reserved", true},
		{"0", "", false},
		{"06", "", false},
		{" 6", "", false},
		{"tcp", "", false},
	}

	for _, tt := range tests {
		name, ok := Default().Name(tt.number)
		if ok != tt.ok || name != tt.name {
			t.Errorf("Name(%q) = (%q, %v), want (%q, %v)", tt.number, name, ok, tt.name, tt.ok)
		}
		if Default().Contains(tt.number) != tt.ok {
			t.Errorf("Contains(%q) = %v, want %v", tt.number, !tt.ok, tt.ok)
		}
	}

	if Default().Len() != 10 {
		t.Errorf("Expected 10 built-in protocols, got %d", Default().Len())
	}
}

func TestNewTableCopiesEntries(t *testing.T) {
	entries := map[string]string{"6": "tcp"}
	table := NewTable(entries)
	entries["17"] = "udp"

	if table.Contains("17") {
		t.Error("Table should not observe changes to the source map")
	}
}
