package search

import "github.com/Nix-ml-journey/vector-store-project/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during
// search. Text searches report AfterEmbedding and AfterVectorSearch,
// metadata searches report AfterMetadataSearch, and advanced searches
// additionally report AfterFilter with the post-filter result set.
type SearchMonitor interface {
	Start(query string)
	AfterEmbedding(vector []float32)
	AfterVectorSearch(hits []*core.RawHit)
	AfterMetadataSearch(hits []*core.RawHit)
	AfterFilter(results []Result)
	Finish(results []Result)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterEmbedding(_ []float32)           {}
func (n *noopMonitor) AfterVectorSearch(_ []*core.RawHit)   {}
func (n *noopMonitor) AfterMetadataSearch(_ []*core.RawHit) {}
func (n *noopMonitor) AfterFilter(_ []Result)               {}
func (n *noopMonitor) Finish(_ []Result)                    {}
