package dnd

// Outcome describes how an interaction left the store.
type Outcome string

const (
	// OutcomeCompleted means End was called after a successful drop.
	OutcomeCompleted Outcome = "completed"

	// OutcomeCancelled means Cancel was called; consumers roll back.
	OutcomeCancelled Outcome = "cancelled"

	// OutcomeReplaced means a new Start overwrote the interaction.
	OutcomeReplaced Outcome = "replaced"
)

// Observer receives lifecycle notifications from the Store.
// Calls happen synchronously, after the store lock is released.
type Observer interface {
	InteractionStarted(i Interaction)
	InteractionEnded(i Interaction, outcome Outcome)
	CloneFailed(source string, err error)
	SignalEmitted(sig Signal)
}

// NopObserver implements Observer with no-ops. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) InteractionStarted(Interaction) {}
func (NopObserver) InteractionEnded(Interaction, Outcome) {}
func (NopObserver) CloneFailed(string, error) {}
func (NopObserver) SignalEmitted(Signal) {}
