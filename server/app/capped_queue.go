package app

import "sort"

// CappedQueue holds what is retained for one channel: the non-pinned messages, oldest
// first, and the pinned messages sorted by CreateAt. Pins do not count toward the limit.
//
// The queue never talks to the platform. Every mutation returns the messages that fell
// out of retention, and the caller deletes them.
type CappedQueue struct {
	queue []Message
	pins  []Message
	limit int
}

// NewCappedQueue creates an empty queue. limit must be positive.
func NewCappedQueue(limit int) *CappedQueue {
	return &CappedQueue{
		queue: make([]Message, 0, limit),
		limit: limit,
	}
}

func (cq *CappedQueue) Len() int {
	return len(cq.queue)
}

func (cq *CappedQueue) Limit() int {
	return cq.limit
}

// Messages returns a copy of the retained messages, oldest first.
func (cq *CappedQueue) Messages() []Message {
	return append([]Message(nil), cq.queue...)
}

// Pins returns a copy of the pinned messages, oldest first.
func (cq *CappedQueue) Pins() []Message {
	return append([]Message(nil), cq.pins...)
}

// Push evicts the oldest messages until there is room for one more, then adds msg at the
// back, or at the front when backfilling history newest first. A message already queued
// or pinned is left where it is.
func (cq *CappedQueue) Push(msg Message, atFront bool) []Message {
	if cq.Contains(msg.ID) || cq.IsPinned(msg.ID) {
		return nil
	}

	var evicted []Message
	for len(cq.queue) > 0 && len(cq.queue) >= cq.limit {
		evicted = append(evicted, cq.popFront())
	}

	if atFront {
		cq.queue = append([]Message{msg}, cq.queue...)
	} else {
		cq.queue = append(cq.queue, msg)
	}
	return evicted
}

// Remove drops a message from both the queue and the pins.
func (cq *CappedQueue) Remove(messageID string) bool {
	var removed bool
	cq.queue, removed = without(cq.queue, messageID)
	var unpinned bool
	cq.pins, unpinned = without(cq.pins, messageID)
	return removed || unpinned
}

// InsertPin adds a pin at its chronological position. A copy of msg still sitting in the
// queue is dropped from it.
func (cq *CappedQueue) InsertPin(msg Message) {
	if cq.IsPinned(msg.ID) {
		return
	}
	cq.queue, _ = without(cq.queue, msg.ID)

	msg.Pinned = true
	i := sort.Search(len(cq.pins), func(i int) bool {
		return cq.pins[i].CreateAt > msg.CreateAt
	})
	cq.pins = append(cq.pins, Message{})
	copy(cq.pins[i+1:], cq.pins[i:])
	cq.pins[i] = msg
}

// IsPinned reports whether the queue knows messageID as pinned.
func (cq *CappedQueue) IsPinned(messageID string) bool {
	return indexOf(cq.pins, messageID) >= 0
}

// Contains reports whether messageID is retained in the queue.
func (cq *CappedQueue) Contains(messageID string) bool {
	return indexOf(cq.queue, messageID) >= 0
}

// SetLimit changes the limit. Raising it never evicts; lowering it evicts the oldest
// max(0, Len()-limit) messages.
func (cq *CappedQueue) SetLimit(limit int) []Message {
	var evicted []Message
	for len(cq.queue) > limit {
		evicted = append(evicted, cq.popFront())
	}
	cq.limit = limit
	return evicted
}

// trim evicts from the front until the queue fits its limit.
func (cq *CappedQueue) trim() []Message {
	var evicted []Message
	for len(cq.queue) > cq.limit {
		evicted = append(evicted, cq.popFront())
	}
	return evicted
}

func (cq *CappedQueue) popFront() Message {
	msg := cq.queue[0]
	cq.queue[0] = Message{}
	cq.queue = cq.queue[1:]
	return msg
}

// without drops every copy of messageID, keeping the order of the rest.
func without(msgs []Message, messageID string) ([]Message, bool) {
	if indexOf(msgs, messageID) < 0 {
		return msgs, false
	}
	kept := msgs[:0]
	for _, m := range msgs {
		if m.ID != messageID {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(msgs); i++ {
		msgs[i] = Message{}
	}
	return kept, true
}

func indexOf(msgs []Message, messageID string) int {
	for i := range msgs {
		if msgs[i].ID == messageID {
			return i
		}
	}
	return -1
}
