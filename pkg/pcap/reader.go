package pcap

import (
	"FlowTagger/internal/flowlog"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcapgo"
)

// Reader converts the packets of a pcap file into flow-log records.
type Reader struct {
	file   *os.File
	handle *pcapgo.Reader
}

// NewReader opens a pcap file for reading.
func NewReader(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	handle, err := pcapgo.NewReader(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read pcap header: %w", err)
	}
	return &Reader{file: file, handle: handle}, nil
}

// Close closes the underlying file.
func (r *Reader) Close() {
	r.file.Close()
}

// ReadRecords aggregates all packets by 5-tuple and returns one ACCEPT/OK record
// per flow, in the order flows were first seen. Packets that are not IP are skipped.
func (r *Reader) ReadRecords(accountID, interfaceID string) ([]flowlog.Record, error) {
	flows := make(map[FiveTuple]*flowlog.Record)
	var order []FiveTuple
	skipped := 0

	for {
		data, ci, err := r.handle.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read packet: %w", err)
		}

		packet := gopacket.NewPacket(data, r.handle.LinkType(), gopacket.Default)
		ft, err := ParsePacket(packet)
		if err != nil {
			skipped++
			continue
		}

		ts := ci.Timestamp.Unix()
		if rec, ok := flows[ft]; ok {
			rec.Packets++
			rec.Bytes += uint64(ci.Length)
			if ts < rec.Start {
				rec.Start = ts
			}
			if ts > rec.End {
				rec.End = ts
			}
			continue
		}

		flows[ft] = &flowlog.Record{
			AccountID:   accountID,
			InterfaceID: interfaceID,
			SrcAddr:     ft.SrcIP,
			DstAddr:     ft.DstIP,
			SrcPort:     ft.SrcPort,
			DstPort:     ft.DstPort,
			Protocol:    ft.Protocol,
			Packets:     1,
			Bytes:       uint64(ci.Length),
			Start:       ts,
			End:         ts,
			Action:      flowlog.ActionAccept,
			Status:      flowlog.StatusOK,
		}
		order = append(order, ft)
	}

	if skipped > 0 {
		log.Printf("Skipped %d non-IP packets", skipped)
	}

	records := make([]flowlog.Record, len(order))
	for i, ft := range order {
		records[i] = *flows[ft]
	}
	return records, nil
}
