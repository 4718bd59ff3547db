// Package app keeps only the newest messages of selected channels.
//
// Every monitored channel owns a CappedQueue:
//   - queue: the non-pinned messages, oldest first, never longer than the limit at rest
//   - pins:  the pinned messages, oldest first, exempt from the limit
//
// A message lives in at most one of the two lists. When a new message pushes the queue
// over its limit the oldest one is deleted on the platform. Unpinning a message moves it
// back into the queue at its chronological position, which may evict older ones.
//
// All state is owned by the Actor. Producers (the websocket listener, the slash command
// handler) only enqueue Commands, so every change happens in one global order:
//
//	listener ──┐
//	           ├─> Actor.commands ─> RetentionService ─> MessageStore, RetentionStore
//	handler  ──┘
//
// Platform and database failures are logged and never abort a command. There are no
// retries: a delete that failed leaves the message on the platform.
package app
