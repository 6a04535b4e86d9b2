package engine

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func entry(id string) WaitingEntry {
	return WaitingEntry{Conn: newFakeConn(id), Wallet: "W-" + id, Username: id}
}

func TestQueuePairsInArrivalOrder(t *testing.T) {
	q := NewQueue()

	if _, matched, err := q.Enqueue(entry("a")); err != nil || matched {
		t.Fatalf("first enqueue matched=%v err=%v", matched, err)
	}
	pair, matched, err := q.Enqueue(entry("b"))
	if err != nil || !matched {
		t.Fatalf("second enqueue matched=%v err=%v", matched, err)
	}
	if pair[0].Conn.ID() != "a" || pair[1].Conn.ID() != "b" {
		t.Fatalf("pair = %s,%s", pair[0].Conn.ID(), pair[1].Conn.ID())
	}
	if q.Len() != 0 {
		t.Fatalf("len = %d, want 0", q.Len())
	}
}

func TestQueueRemoveIfWaiting(t *testing.T) {
	q := NewQueue()
	q.Enqueue(entry("a"))

	if q.RemoveIfWaiting("missing") {
		t.Fatalf("removed an entry that was never queued")
	}
	if !q.RemoveIfWaiting("a") {
		t.Fatalf("did not remove queued entry")
	}
	if q.RemoveIfWaiting("a") {
		t.Fatalf("removed the same entry twice")
	}

	if _, matched, _ := q.Enqueue(entry("b")); matched {
		t.Fatalf("matched against a removed entry")
	}
}

func TestQueueRejectsDuplicates(t *testing.T) {
	q := NewQueue()
	a := entry("a")
	q.Enqueue(a)

	if _, _, err := q.Enqueue(a); !errors.Is(err, ErrAlreadyQueued) {
		t.Fatalf("same connection err = %v", err)
	}
	sameWallet := entry("a2")
	sameWallet.Wallet = a.Wallet
	if _, _, err := q.Enqueue(sameWallet); !errors.Is(err, ErrWalletQueued) {
		t.Fatalf("same wallet err = %v", err)
	}
	if q.Len() != 1 {
		t.Fatalf("len = %d, want 1", q.Len())
	}
}

func TestQueueConcurrentEnqueueMatchesEachEntryOnce(t *testing.T) {
	q := NewQueue()
	const n = 200

	var (
		mu   sync.Mutex
		seen = map[string]int{}
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pair, matched, err := q.Enqueue(entry(fmt.Sprintf("c%d", i)))
			if err != nil {
				t.Errorf("enqueue: %v", err)
				return
			}
			if !matched {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, p := range pair {
				seen[p.Conn.ID()]++
			}
		}(i)
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("matched %d entries, want %d", len(seen), n)
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("%s matched %d times", id, count)
		}
	}
}
