package writer

import (
	"FlowTagger/internal/config"
	"FlowTagger/internal/factory"
	"FlowTagger/internal/model"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultNATSSubject = "flowtagger.reports"

func init() {
	factory.RegisterWriter("nats", func(def config.WriterDef) (model.Writer, error) {
		return NewNATSWriter(def.NATS)
	})
}

// NATSWriter publishes each finished report as a protobuf Struct message.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter connects to the configured NATS server.
func NewNATSWriter(cfg config.NATSConfig) (model.Writer, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	subject := cfg.Subject
	if subject == "" {
		subject = defaultNATSSubject
	}

	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", url)
	return &NATSWriter{nc: nc, subject: subject}, nil
}

func (w *NATSWriter) Name() string {
	return "nats"
}

// Write publishes the report and waits for the server to acknowledge the flush.
func (w *NATSWriter) Write(report *model.Report) error {
	data, err := EncodeReport(report)
	if err != nil {
		return err
	}
	if err := w.nc.Publish(w.subject, data); err != nil {
		return fmt.Errorf("failed to publish report: %w", err)
	}
	if err := w.nc.Flush(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	log.Printf("Published report for '%s' to '%s'", report.Source, w.subject)
	return nil
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() error {
	if w.nc == nil {
		return nil
	}
	return w.nc.Drain()
}

// EncodeReport serializes a report as a google.protobuf.Struct.
func EncodeReport(report *model.Report) ([]byte, error) {
	tags := make([]interface{}, 0, len(report.Tags))
	for _, row := range report.Tags {
		tags = append(tags, map[string]interface{}{
			"tag":   row.Tag,
			"count": row.Count,
		})
	}

	ports := make([]interface{}, 0, len(report.PortProtocols))
	for _, row := range report.PortProtocols {
		ports = append(ports, map[string]interface{}{
			"port":     row.Port,
			"protocol": row.Protocol,
			"count":    row.Count,
		})
	}

	rejected := make(map[string]interface{}, len(report.Stats.Rejected))
	for reason, n := range report.Stats.Rejected {
		rejected[reason] = n
	}

	payload, err := structpb.NewStruct(map[string]interface{}{
		"source":         report.Source,
		"generated_at":   report.GeneratedAt.UTC().Format(time.RFC3339),
		"tag_counts":     tags,
		"port_protocols": ports,
		"stats": map[string]interface{}{
			"lines":    report.Stats.Lines,
			"accepted": report.Stats.Accepted,
			"rejected": rejected,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build report payload: %w", err)
	}

	data, err := proto.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report payload: %w", err)
	}
	return data, nil
}
