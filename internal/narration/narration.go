// Package narration converts a phase transition into a one-line human-
// readable description, for the demo harness's log stream.
//
// Adapted from the teacher's internal/llm/narration.go: same one-function,
// one-purpose shape, but deterministic templating in place of an LLM call —
// free-form text generation and any foreign-language binding surface are
// explicitly out of scope for this engine (see spec Section 1).
package narration

import (
	"fmt"
	"time"

	"github.com/ncruces/go-strftime"

	"github.com/talgya/trustfield/internal/phase"
)

// phrases gives each phase a short present-tense description.
var phrases = map[phase.SocialPhase]string{
	phase.ShyObserver:        "keeps its distance, watching quietly",
	phase.StartledRetreat:    "flinches back, lights flashing red",
	phase.QuietlyBeloved:     "settles into easy, unguarded warmth",
	phase.ProtectiveGuardian: "squares up, alert but not afraid",
}

// TransitionEvent describes one caller-visible phase change for narration.
type TransitionEvent struct {
	ContextHash uint64
	Tick        uint64
	From, To    phase.SocialPhase
	Coherence   float64
	Tension     float64
	At          time.Time
}

// Describe renders a one-line narration of a transition. Identical-phase
// "transitions" (no actual change) are still renderable — callers decide
// whether to suppress them.
func Describe(ev TransitionEvent) string {
	stamp := strftime.Format("%Y-%m-%d %H:%M:%S", ev.At)

	if ev.From == ev.To {
		return fmt.Sprintf("[%s] context %016x %s (coherence=%.2f, tension=%.2f)",
			stamp, ev.ContextHash, phrases[ev.To], ev.Coherence, ev.Tension)
	}

	return fmt.Sprintf("[%s] context %016x shifts from %s to %s — it now %s",
		stamp, ev.ContextHash, ev.From, ev.To, phrases[ev.To])
}
