package suggest

import (
	"github.com/poiesic/kindred/core"
	"github.com/poiesic/kindred/signature"
)

// Monitor provides hooks to observe a suggestion run.
// Hooks are called from the goroutine running Suggest, in order.
type Monitor interface {
	Start(exemplarIDs []string)
	AfterExemplarSignature(sig *signature.Signature, window core.DateRange)
	AfterTranslation(legacyIDs []string)
	AfterSearch(candidates []core.ArticleSummary)
	CandidateScored(s Suggestion)
	CandidateFailed(id string, err error)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ []string)                                           {}
func (n *noopMonitor) AfterExemplarSignature(_ *signature.Signature, _ core.DateRange) {}
func (n *noopMonitor) AfterTranslation(_ []string)                                {}
func (n *noopMonitor) AfterSearch(_ []core.ArticleSummary)                        {}
func (n *noopMonitor) CandidateScored(_ Suggestion)                               {}
func (n *noopMonitor) CandidateFailed(_ string, _ error)                          {}
func (n *noopMonitor) Finish(_ *Result)                                           {}
