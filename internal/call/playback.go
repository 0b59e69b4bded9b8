package call

import (
	"context"
	"log"
	"sync"
)

// PlaybackQueue serializes spoken utterances: it accepts text, fetches
// synthesized audio, and plays exactly one utterance at a time in enqueue
// order. A failed synthesis or playback is treated the same as completion
// so a bad utterance never stalls the queue.
type PlaybackQueue struct {
	synth  Synthesizer
	player Player

	mu      sync.Mutex
	items   []string
	playing bool
	closed  bool
}

// NewPlaybackQueue constructs an idle queue over the given synthesizer and player.
func NewPlaybackQueue(synth Synthesizer, player Player) *PlaybackQueue {
	return &PlaybackQueue{synth: synth, player: player}
}

// Enqueue appends text to the tail. It never blocks and never fails; if the
// queue is idle the utterance starts playing immediately.
func (q *PlaybackQueue) Enqueue(text string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, text)
	q.drainLocked()
	q.mu.Unlock()
}

// Len reports how many utterances are pending, including the one playing.
func (q *PlaybackQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Playing reports whether an utterance is currently in flight.
func (q *PlaybackQueue) Playing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing
}

// Close stops draining; queued utterances are dropped. The in-flight
// playback, if any, runs to completion.
func (q *PlaybackQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.items = nil
	q.mu.Unlock()
}

// drainLocked starts the head utterance when nothing is playing. Callers
// must hold q.mu.
func (q *PlaybackQueue) drainLocked() {
	if q.playing || q.closed || len(q.items) == 0 {
		return
	}
	q.playing = true
	text := q.items[0]
	go q.playOne(text)
}

// playOne runs off the caller goroutine: one synthesis fetch, one playback,
// then the head is popped exactly once regardless of outcome.
func (q *PlaybackQueue) playOne(text string) {
	audio, err := q.synth.Synthesize(context.Background(), text)
	if err != nil {
		log.Printf("playback: synthesis failed, skipping utterance: %v", err)
	} else if err := q.player.Play(context.Background(), audio); err != nil {
		log.Printf("playback: play failed, skipping utterance: %v", err)
	}

	q.mu.Lock()
	if len(q.items) > 0 {
		q.items = q.items[1:]
	}
	q.playing = false
	q.drainLocked()
	q.mu.Unlock()
}
