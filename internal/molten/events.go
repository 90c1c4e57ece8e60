package molten

import "github.com/google/uuid"

// EventKind names the operation that produced an Event, mirroring the
// "hypergraph"/"query" channel fields spec.md §5 requires.
type EventKind string

const (
	EventFocus     EventKind = "focus"
	EventDiffuse   EventKind = "diffuse"
	EventLocate    EventKind = "locate"
	EventUnite     EventKind = "unite"
	EventTranslate EventKind = "translate"
	EventAbsorb    EventKind = "absorb"
	EventInfer     EventKind = "infer"
	EventFixed     EventKind = "fixed"
)

// Event is one structured observability record. Fields not relevant to
// a given Kind are left at their zero value — this is an observability
// envelope, not a core data type, so it favours breadth over a tagged
// union per emission site.
type Event struct {
	ID         string
	Kind       EventKind
	Label      Label
	Source     []Label
	Sink       []Label
	Count      int
	Iterations int
}

// Observe installs a channel that receives a copy of every event the
// hypergraph emits. Sends are non-blocking: a full channel silently
// drops the event rather than stalling the core, per spec.md §5 ("the
// core must not depend on observer presence or back-pressure").
func (h *Hypergraph[T]) Observe(events chan<- Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = events
}

func (h *Hypergraph[T]) emit(e Event) {
	if h.events == nil {
		return
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	select {
	case h.events <- e:
	default:
	}
}
