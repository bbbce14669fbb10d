package server

import (
	"encoding/json"
	"sync"
	"testing"
)

// Snapshots from Get must stay readable and marshalable while the render
// goroutine streams progress through Update on the same session.
func TestSnapshotsIsolatedFromProgressWrites(t *testing.T) {
	store := NewStore(t.TempDir())
	sess, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	id := sess.ID

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i <= 1000; i++ {
			p := float64(i) / 1000
			store.Update(id, func(s *Session) {
				s.Status = StatusRendering
				s.Progress = p
			})
		}
	}()
	for i := 0; i < 1000; i++ {
		snap, ok := store.Get(id)
		if !ok {
			t.Fatal("session vanished mid-run")
		}
		if _, err := json.Marshal(snap); err != nil {
			t.Fatalf("marshal snapshot: %v", err)
		}
		if snap.Progress < 0 || snap.Progress > 1 {
			t.Fatalf("torn progress read: %v", snap.Progress)
		}
	}
	wg.Wait()
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewStore(t.TempDir())
	sess, err := store.Create()
	if err != nil {
		t.Fatal(err)
	}
	snap, _ := store.Get(sess.ID)
	snap.Status = StatusError
	again, _ := store.Get(sess.ID)
	if again.Status != StatusCreated {
		t.Fatal("mutating a snapshot must not touch the stored session")
	}
}
