package engine

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/dshills/scribe/internal/engine/selection"
)

// EventKind identifies a class of document change.
type EventKind uint8

const (
	// EventContentChanged fires after text, formats or blocks change.
	EventContentChanged EventKind = iota
	// EventSelectionChanged fires after the selection moves.
	EventSelectionChanged
)

func (k EventKind) String() string {
	switch k {
	case EventContentChanged:
		return "content-changed"
	case EventSelectionChanged:
		return "selection-changed"
	}
	return "EventKind(" + strconv.Itoa(int(k)) + ")"
}

// Event describes the document state after a change.
type Event struct {
	Kind       EventKind
	DocumentID string
	Revision   uint64
	Length     int
	Selection  selection.Selection
}

// Handler receives document events. Handlers run synchronously on the
// goroutine that made the change, after the document lock is released, so
// they may call back into the document.
type Handler func(Event)

type observer struct {
	id      string
	handler Handler
}

// On registers h for events of kind and returns a subscription ID for Off.
func (d *Document) On(kind EventKind, h Handler) (string, error) {
	if h == nil {
		return "", nil
	}
	if d.IsDestroyed() {
		return "", ErrDestroyed
	}
	id := uuid.NewString()
	d.obsMu.Lock()
	d.observers[kind] = append(d.observers[kind], observer{id: id, handler: h})
	d.obsMu.Unlock()
	return id, nil
}

// Off removes the subscription with the given ID and reports whether it
// existed.
func (d *Document) Off(id string) bool {
	d.obsMu.Lock()
	defer d.obsMu.Unlock()
	for kind, list := range d.observers {
		for i, o := range list {
			if o.id == id {
				d.observers[kind] = append(list[:i:i], list[i+1:]...)
				return true
			}
		}
	}
	return false
}

// noteLocked records a change. Inside a batch the change is remembered for
// the end of the batch; otherwise the events to emit are returned.
func (d *Document) noteLocked(content, sel bool) []Event {
	if content {
		d.revision++
	}
	if d.batch != nil {
		d.batch.content = d.batch.content || content
		d.batch.selected = d.batch.selected || sel
		return nil
	}
	var events []Event
	if content {
		events = append(events, d.eventLocked(EventContentChanged))
	}
	if sel {
		events = append(events, d.eventLocked(EventSelectionChanged))
	}
	return events
}

func (d *Document) eventLocked(kind EventKind) Event {
	return Event{
		Kind:       kind,
		DocumentID: d.id,
		Revision:   d.revision,
		Length:     d.m.text.Len(),
		Selection:  d.m.sel,
	}
}

// emit delivers events to their observers. A panicking handler is logged
// and does not stop delivery to the others.
func (d *Document) emit(events []Event) {
	for _, ev := range events {
		d.obsMu.RLock()
		list := append([]observer(nil), d.observers[ev.Kind]...)
		d.obsMu.RUnlock()
		for _, o := range list {
			d.deliver(o, ev)
		}
	}
}

func (d *Document) deliver(o observer, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler %s panicked on %s: %v", o.id, ev.Kind, r)
		}
	}()
	o.handler(ev)
}
