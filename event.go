package ballast

// EventType classifies a collision event relative to the previous step.
type EventType int

const (
	// CollisionEnter fires on the first step a pair overlaps.
	CollisionEnter EventType = iota
	// CollisionStay fires on every subsequent step the overlap persists.
	CollisionStay
	// CollisionExit fires on the first step a previously overlapping pair
	// no longer overlaps.
	CollisionExit
)

func (t EventType) String() string {
	switch t {
	case CollisionEnter:
		return "enter"
	case CollisionStay:
		return "stay"
	case CollisionExit:
		return "exit"
	default:
		return "unknown"
	}
}

// CollisionEvent reports a transition in the contact state of a body pair.
// BodyA < BodyB always. Contact is zero-valued for exit events.
type CollisionEvent struct {
	Type    EventType
	BodyA   int
	BodyB   int
	Contact Contact
}

// CollisionListener receives collision events at the end of each step.
type CollisionListener func(CollisionEvent)

type pairKey struct {
	a, b int
}

func makePairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// Events tracks overlapping pairs across steps and turns them into
// enter/stay/exit notifications. Events buffer during the step and are
// delivered together after it completes, so listeners observe a consistent
// world.
type Events struct {
	listeners []CollisionListener
	buffer    []CollisionEvent
	previous  map[pairKey]struct{}
	current   map[pairKey]Contact
}

func newEvents() *Events {
	return &Events{
		previous: make(map[pairKey]struct{}),
		current:  make(map[pairKey]Contact),
	}
}

// Subscribe registers a listener for all collision events.
func (e *Events) Subscribe(l CollisionListener) {
	e.listeners = append(e.listeners, l)
}

func (e *Events) recordContact(a, b int, c Contact) {
	e.current[makePairKey(a, b)] = c
}

// finishStep diffs the pairs seen this step against the previous step and
// buffers the resulting events.
func (e *Events) finishStep() {
	for key, contact := range e.current {
		eventType := CollisionEnter
		if _, seen := e.previous[key]; seen {
			eventType = CollisionStay
		}
		e.buffer = append(e.buffer, CollisionEvent{
			Type: eventType, BodyA: key.a, BodyB: key.b, Contact: contact,
		})
	}
	for key := range e.previous {
		if _, still := e.current[key]; !still {
			e.buffer = append(e.buffer, CollisionEvent{
				Type: CollisionExit, BodyA: key.a, BodyB: key.b,
			})
		}
	}

	clear(e.previous)
	for key := range e.current {
		e.previous[key] = struct{}{}
	}
	clear(e.current)
}

func (e *Events) flush() {
	for _, event := range e.buffer {
		for _, l := range e.listeners {
			l(event)
		}
	}
	e.buffer = e.buffer[:0]
}
