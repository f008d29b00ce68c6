package cart

type EventKind int

const (
	EventAdded EventKind = iota + 1
	EventUpdated
	EventRemoved
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event describes a single cart mutation. Quantity is the quantity after the
// mutation and is zero for removals. Product is empty for EventCleared.
type Event struct {
	Kind     EventKind
	Product  string
	Quantity int
}

// Listener is notified synchronously after every mutation, outside the store lock,
// so it may read the store again.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}
