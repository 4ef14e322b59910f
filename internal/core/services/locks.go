package services

import (
	"slices"
	"sort"
	"strconv"
	"sync"
	"time"
)

// KeyLocker serializes work on named keys inside one process. Services that
// mutate the same rows share a single KeyLocker. Entries live only while some
// caller holds or waits on the key.
type KeyLocker struct {
	enabled bool
	mu      sync.Mutex
	locks   map[string]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

func NewKeyLocker(enabled bool) *KeyLocker {
	return &KeyLocker{
		enabled: enabled,
		locks:   make(map[string]*keyLock),
	}
}

// Lock acquires every key in sorted order and returns the release func.
func (l *KeyLocker) Lock(keys ...string) func() {
	if l == nil || !l.enabled || len(keys) == 0 {
		return func() {}
	}
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	sorted = slices.Compact(sorted)

	l.mu.Lock()
	acquired := make([]*keyLock, 0, len(sorted))
	for _, k := range sorted {
		entry := l.locks[k]
		if entry == nil {
			entry = &keyLock{}
			l.locks[k] = entry
		}
		entry.refs++
		acquired = append(acquired, entry)
	}
	l.mu.Unlock()

	for _, entry := range acquired {
		entry.mu.Lock()
	}
	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].mu.Unlock()
		}
		l.mu.Lock()
		for i, k := range sorted {
			acquired[i].refs--
			if acquired[i].refs == 0 {
				delete(l.locks, k)
			}
		}
		l.mu.Unlock()
	}
}

func taskKey(id uint) string {
	return "task:" + strconv.FormatUint(uint64(id), 10)
}

func urlKey(normalized string) string {
	return "url:" + normalized
}

// Clock returns the current time; tests inject a fixed one.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return systemClock
	}
	return c
}
