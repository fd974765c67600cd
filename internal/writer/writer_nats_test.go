package writer

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestEncodeReport(t *testing.T) {
	data, err := EncodeReport(sampleReport())
	if err != nil {
		t.Fatalf("EncodeReport failed: %v", err)
	}

	var payload structpb.Struct
	if err := proto.Unmarshal(data, &payload); err != nil {
		t.Fatalf("Failed to unmarshal payload: %v", err)
	}
	fields := payload.GetFields()

	if got := fields["source"].GetStringValue(); got != "input/flow_logs.txt" {
		t.Errorf("Expected source 'input/flow_logs.txt', got '%s'", got)
	}
	if got := fields["generated_at"].GetStringValue(); got != "2024-05-04T12:00:00Z" {
		t.Errorf("Unexpected generated_at: '%s'", got)
	}

	tags := fields["tag_counts"].GetListValue().GetValues()
	if len(tags) != 2 {
		t.Fatalf("Expected 2 tag rows, got %d", len(tags))
	}
	first := tags[0].GetStructValue().GetFields()
	if first["tag"].GetStringValue() != "sv_P2" || first["count"].GetNumberValue() != 3 {
		t.Errorf("Unexpected first tag row: %v", first)
	}

	ports := fields["port_protocols"].GetListValue().GetValues()
	if len(ports) != 2 || ports[1].GetStructValue().GetFields()["port"].GetStringValue() != "9999" {
		t.Errorf("Unexpected port/protocol rows: %v", ports)
	}

	stats := fields["stats"].GetStructValue().GetFields()
	if stats["accepted"].GetNumberValue() != 5 {
		t.Errorf("Expected 5 accepted, got %v", stats["accepted"].GetNumberValue())
	}
	if stats["rejected"].GetStructValue().GetFields()["action"].GetNumberValue() != 1 {
		t.Errorf("Expected 1 action rejection, got %v", stats["rejected"])
	}
}
