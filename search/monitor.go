package search

import (
	"github.com/poiesic/pocketgenie/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, filter core.EntityFilter)
	AfterQueryEmbedding(dimensions int)
	Scored(entity core.Embeddable, score float32, kept bool)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.EntityFilter)         {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)                   {}
func (n *noopMonitor) Scored(_ core.Embeddable, _ float32, _ bool) {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)               {}
