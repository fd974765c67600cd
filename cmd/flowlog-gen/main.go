package main

import (
	"FlowTagger/pkg/pcap"
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
)

func main() {
	inputFile := flag.String("i", "", "Input pcap file path")
	outputFile := flag.String("o", "flow_logs.txt", "Output flow-log file path")
	accountID := flag.String("account", "123456789012", "Account ID written into each record")
	interfaceID := flag.String("eni", "eni-0a1b2c3d", "Interface ID written into each record")
	flag.Parse()

	if *inputFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: flowlog-gen -i <capture.pcap> [-o flow_logs.txt]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	reader, err := pcap.NewReader(*inputFile)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer reader.Close()
	log.Printf("Reading packets from '%s'...", *inputFile)

	records, err := reader.ReadRecords(*accountID, *interfaceID)
	if err != nil {
		log.Fatalf("Failed to read packets: %v", err)
	}

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, rec := range records {
		fmt.Fprintln(w, rec.String())
	}
	if err := w.Flush(); err != nil {
		log.Fatalf("Failed to write flow log: %v", err)
	}

	log.Printf("Successfully wrote %d flow records into %s.", len(records), *outputFile)
}
