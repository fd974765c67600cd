package aggregator

import (
	"FlowTagger/internal/lookup"
	"FlowTagger/internal/model"
)

// Aggregator accumulates tag counts and port/protocol counts for one run.
// It is owned by a single processing pass and is not safe for concurrent use.
type Aggregator struct {
	tags          *Counter[string]
	portProtocols *Counter[lookup.Key]
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{
		tags:          NewCounter[string](),
		portProtocols: NewCounter[lookup.Key](),
	}
}

// Add records one classified flow.
func (a *Aggregator) Add(tag string, key lookup.Key) {
	a.tags.Inc(tag)
	a.portProtocols.Inc(key)
}

// Tags returns the tag counts in first-seen order.
func (a *Aggregator) Tags() []model.TagCount {
	rows := make([]model.TagCount, 0, a.tags.Len())
	for _, tag := range a.tags.Keys() {
		rows = append(rows, model.TagCount{Tag: tag, Count: a.tags.Get(tag)})
	}
	return rows
}

// PortProtocols returns the port/protocol counts in first-seen order.
func (a *Aggregator) PortProtocols() []model.PortProtocolCount {
	rows := make([]model.PortProtocolCount, 0, a.portProtocols.Len())
	for _, key := range a.portProtocols.Keys() {
		rows = append(rows, model.PortProtocolCount{
			Port:     key.Port,
			Protocol: key.Protocol,
			Count:    a.portProtocols.Get(key),
		})
	}
	return rows
}
