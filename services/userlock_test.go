package services

import (
	"sync"
	"testing"
)

func TestUserLockerSerialisesPerUser(t *testing.T) {
	l := NewUserLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(7)
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("%d goroutines held the same user lock at once", maxSeen)
	}
	if n := l.size(); n != 0 {
		t.Errorf("lock table holds %d entries", n)
	}
}

func TestUserLockerIndependentUsers(t *testing.T) {
	l := NewUserLocker()
	unlockA := l.Lock(1)
	done := make(chan struct{})
	go func() {
		unlock := l.Lock(2)
		unlock()
		close(done)
	}()
	<-done
	unlockA()
	if n := l.size(); n != 0 {
		t.Errorf("lock table holds %d entries", n)
	}
}
