package events

// Batch holds the events raised inside one unit of work. Use cases fill it
// while the transaction is open and drain it once the commit succeeded, so a
// rolled-back write never reaches the broker.
type Batch struct {
	pending []DomainEvent
}

// Add queues events in the order given. Nil entries are skipped.
func (b *Batch) Add(evs ...DomainEvent) {
	for _, e := range evs {
		if e != nil {
			b.pending = append(b.pending, e)
		}
	}
}

// Len reports how many events are queued.
func (b *Batch) Len() int { return len(b.pending) }

// Drain returns the queued events and empties the batch.
func (b *Batch) Drain() []DomainEvent {
	out := b.pending
	b.pending = nil
	return out
}
