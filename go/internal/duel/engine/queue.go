package engine

import (
	"errors"
	"sync"
)

var (
	// ErrAlreadyQueued is returned when the connection is already waiting
	ErrAlreadyQueued = errors.New("connection already waiting")
	// ErrWalletQueued is returned when another connection is already waiting with the same wallet
	ErrWalletQueued = errors.New("wallet already waiting")
)

// WaitingEntry is a connection waiting for an opponent
type WaitingEntry struct {
	Conn     Conn
	Wallet   string
	Username string
}

// Queue is the FIFO matchmaking queue. It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	entries []WaitingEntry
}

func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue appends e and, when two entries are waiting, dequeues the two oldest as a pair.
// An entry never leaves the queue twice, so it is never matched twice.
func (q *Queue) Enqueue(e WaitingEntry) (pair [2]WaitingEntry, matched bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, w := range q.entries {
		if w.Conn.ID() == e.Conn.ID() {
			return pair, false, ErrAlreadyQueued
		}
		if w.Wallet == e.Wallet {
			return pair, false, ErrWalletQueued
		}
	}

	q.entries = append(q.entries, e)
	if len(q.entries) < 2 {
		return pair, false, nil
	}

	pair[0], pair[1] = q.entries[0], q.entries[1]
	q.entries[0], q.entries[1] = WaitingEntry{}, WaitingEntry{}
	q.entries = q.entries[2:]
	return pair, true, nil
}

// RemoveIfWaiting drops the entry for connID. It reports whether one was removed.
func (q *Queue) RemoveIfWaiting(connID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, w := range q.entries {
		if w.Conn.ID() == connID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of waiting entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}
