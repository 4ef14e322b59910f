package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLocker_SerializesSameKey(t *testing.T) {
	locks := NewKeyLocker(true)
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(taskKey(7))
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestKeyLocker_Disabled(t *testing.T) {
	locks := NewKeyLocker(false)
	unlock := locks.Lock("a")
	// A disabled locker never blocks, even on a held key.
	unlock2 := locks.Lock("a")
	unlock2()
	unlock()

	var nilLocker *KeyLocker
	nilLocker.Lock("b")()
}

func TestKeyLocker_MultipleKeysAnyOrder(t *testing.T) {
	locks := NewKeyLocker(true)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			locks.Lock("x", "y")()
		}()
		go func() {
			defer wg.Done()
			locks.Lock("y", "x")()
		}()
	}
	wg.Wait()
}

func heldKeys(l *KeyLocker) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func TestKeyLocker_DropsReleasedKeys(t *testing.T) {
	locks := NewKeyLocker(true)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := locks.Lock(taskKey(uint(i%10)), urlKey("https://example.org"))
			unlock()
		}(i)
	}
	wg.Wait()
	assert.Zero(t, heldKeys(locks))

	unlock := locks.Lock("a", "b", "a")
	assert.Equal(t, 2, heldKeys(locks))

	released := make(chan struct{})
	go func() {
		locks.Lock("b")()
		close(released)
	}()
	unlock()
	<-released
	assert.Zero(t, heldKeys(locks))
}
