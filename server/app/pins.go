package app

import "sort"

// PinDiff is the difference between the pins known locally and a fresh snapshot of the
// channel's pins.
type PinDiff struct {
	// Added holds the ids pinned since the last reconciliation.
	Added []string
	// Removed holds the messages whose pin was lifted.
	Removed []Message
	// Pins is the snapshot, oldest first.
	Pins []Message
}

// Empty reports whether the snapshot matches the local pins.
func (d PinDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// DiffPins compares the local pins with an unordered remote snapshot.
func DiffPins(local, remote []Message) PinDiff {
	remoteIDs := make(map[string]struct{}, len(remote))
	for _, m := range remote {
		remoteIDs[m.ID] = struct{}{}
	}
	localIDs := make(map[string]struct{}, len(local))
	for _, m := range local {
		localIDs[m.ID] = struct{}{}
	}

	diff := PinDiff{Pins: make([]Message, 0, len(remote))}
	for _, m := range local {
		if _, ok := remoteIDs[m.ID]; !ok {
			m.Pinned = false
			diff.Removed = append(diff.Removed, m)
		}
	}
	for _, m := range remote {
		if _, ok := localIDs[m.ID]; !ok {
			diff.Added = append(diff.Added, m.ID)
		}
		m.Pinned = true
		diff.Pins = append(diff.Pins, m)
	}
	sortByCreateAt(diff.Pins)

	return diff
}

// ApplyPins merges a diff into the queue. Newly pinned messages leave the queue, unpinned
// ones compete for a slot again at their chronological position, and whatever no longer
// fits is returned, oldest first.
func (cq *CappedQueue) ApplyPins(diff PinDiff) []Message {
	if diff.Empty() {
		cq.pins = append(cq.pins[:0], diff.Pins...)
		return nil
	}

	for _, id := range diff.Added {
		cq.queue, _ = without(cq.queue, id)
	}

	candidates := make([]Message, 0, len(cq.queue)+len(diff.Removed))
	candidates = append(candidates, cq.queue...)
	candidates = append(candidates, diff.Removed...)
	sortByCreateAt(candidates)
	cq.queue = candidates

	evicted := cq.trim()
	cq.pins = append([]Message(nil), diff.Pins...)
	return evicted
}

func sortByCreateAt(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreateAt < msgs[j].CreateAt
	})
}
