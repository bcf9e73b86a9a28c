package pointindex

import "reflect"

// maxEventTypes bounds how many distinct event types a bus tracks.
const maxEventTypes = 32

// SplitEvent is published after an overflowing bucket became a node. Depth is
// the depth of the new node; Levels is how many nodes the split created (more
// than one when clustered points needed a chain of splits).
type SplitEvent struct {
	Node   Handle
	Depth  int
	Levels int
	Items  int
}

// MergeEvent is published after a node collapsed back into one bucket.
type MergeEvent struct {
	Bucket Handle
	Depth  int
	Items  int
}

// RelocateEvent is published whenever swap-remove moved an element and the
// tree repaired the reference to it. Nodes is false for bucket moves.
type RelocateEvent struct {
	Relocation
	Nodes bool
}

// OverflowEvent is published when a leaf at max depth is over capacity, or
// would have been when the policy rejects.
type OverflowEvent struct {
	Bucket   Handle
	Depth    int
	Items    int
	Rejected bool
}

// EventBus delivers tree events to subscribers synchronously, in subscription
// order. The zero value is ready to use. A bus is not safe for concurrent use,
// matching the tree's single-writer model.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [maxEventTypes][]any
	nextEventTypeID uint8
}

// Subscribe registers handler for events of type T.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.typeID(reflect.TypeFor[T]())
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish sends event to every handler subscribed to T. A nil bus is a no-op.
func Publish[T any](bus *EventBus, event T) {
	if bus == nil || bus.eventTypeMap == nil {
		return
	}
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	if !ok {
		return
	}
	for _, h := range bus.handlers[id] {
		h.(func(T))(event)
	}
}

func (bus *EventBus) typeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if int(bus.nextEventTypeID) >= maxEventTypes {
		panic("pointindex: too many event types")
	}
	id := bus.nextEventTypeID
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
