package pcap

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// FiveTuple identifies a flow.
type FiveTuple struct {
	SrcIP    string
	DstIP    string
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
}

// ParsePacket extracts the 5-tuple of an IPv4 or IPv6 packet. For IPv6 the
// protocol is the one after any extension headers. Protocols without ports
// (e.g. ICMP) get zero ports, as flow logs record them.
func ParsePacket(packet gopacket.Packet) (FiveTuple, error) {
	var ft FiveTuple

	if l := packet.Layer(layers.LayerTypeIPv4); l != nil {
		ip := l.(*layers.IPv4)
		ft.SrcIP = ip.SrcIP.String()
		ft.DstIP = ip.DstIP.String()
		ft.Protocol = uint8(ip.Protocol)
	} else if l := packet.Layer(layers.LayerTypeIPv6); l != nil {
		ip := l.(*layers.IPv6)
		ft.SrcIP = ip.SrcIP.String()
		ft.DstIP = ip.DstIP.String()
		ft.Protocol = uint8(ipv6Protocol(packet, ip))
	} else {
		return ft, fmt.Errorf("not an IP packet")
	}

	if l := packet.Layer(layers.LayerTypeTCP); l != nil {
		tcp := l.(*layers.TCP)
		ft.SrcPort = uint16(tcp.SrcPort)
		ft.DstPort = uint16(tcp.DstPort)
	} else if l := packet.Layer(layers.LayerTypeUDP); l != nil {
		udp := l.(*layers.UDP)
		ft.SrcPort = uint16(udp.SrcPort)
		ft.DstPort = uint16(udp.DstPort)
	}

	return ft, nil
}

// ipv6Protocol follows the extension header chain to the upper-layer protocol.
func ipv6Protocol(packet gopacket.Packet, ip *layers.IPv6) layers.IPProtocol {
	proto := ip.NextHeader
	for _, l := range packet.Layers() {
		switch ext := l.(type) {
		case *layers.IPv6HopByHop:
			proto = ext.NextHeader
		case *layers.IPv6Routing:
			proto = ext.NextHeader
		case *layers.IPv6Fragment:
			proto = ext.NextHeader
		case *layers.IPv6Destination:
			proto = ext.NextHeader
		}
	}
	return proto
}
