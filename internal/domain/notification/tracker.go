// internal/domain/notification/tracker.go
package notification

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const day = 24 * time.Hour

// SlotKey identifies one record at one HH:MM slot, e.g. "42-08:05".
func SlotKey(recordID int64, timeSlot string) string {
	return fmt.Sprintf("%d-%s", recordID, timeSlot)
}

// Tracker remembers which (record, slot) pairs were already notified today, per user.
// State lives in memory only; a process restart starts from an empty tracker.
// One Tracker must be shared by every trigger that runs the scan.
type Tracker struct {
	mu            sync.Mutex
	notified      map[int64]map[string]struct{} // userID -> set of slot keys
	lastResetDate time.Time
}

func NewTracker() *Tracker {
	return &Tracker{notified: make(map[int64]map[string]struct{})}
}

// ShouldReset reports whether at least one whole day has elapsed since the last reset.
func (t *Tracker) ShouldReset(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shouldResetLocked(now)
}

func (t *Tracker) shouldResetLocked(now time.Time) bool {
	return int64(now.Sub(t.lastResetDate)/day) >= 1
}

// ResetIfNeeded clears all state when ShouldReset holds. It reports whether it cleared.
func (t *Tracker) ResetIfNeeded(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.shouldResetLocked(now) {
		return false
	}
	t.resetLocked(now)
	return true
}

// Reset unconditionally clears all state and stamps now as the last reset.
func (t *Tracker) Reset(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked(now)
}

// ResetKeepingSlot clears all state except claims on timeSlot, so a reset that
// lands inside a minute already being notified cannot re-open that minute.
func (t *Tracker) ResetKeepingSlot(now time.Time, timeSlot string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	suffix := "-" + timeSlot
	kept := make(map[int64]map[string]struct{})
	for userID, set := range t.notified {
		for key := range set {
			if !strings.HasSuffix(key, suffix) {
				continue
			}
			if kept[userID] == nil {
				kept[userID] = make(map[string]struct{})
			}
			kept[userID][key] = struct{}{}
		}
	}
	t.notified = kept
	t.lastResetDate = now
}

func (t *Tracker) resetLocked(now time.Time) {
	t.notified = make(map[int64]map[string]struct{})
	t.lastResetDate = now
}

// LastResetDate returns when the state was last cleared.
func (t *Tracker) LastResetDate() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastResetDate
}

func (t *Tracker) HasNotified(userID, recordID int64, timeSlot string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.notified[userID][SlotKey(recordID, timeSlot)]
	return ok
}

func (t *Tracker) MarkNotified(userID, recordID int64, timeSlot string) {
	t.Claim(userID, recordID, timeSlot)
}

// Claim inserts the slot key and reports true only if it was not present before.
// Two scans racing on the same slot get exactly one true.
func (t *Tracker) Claim(userID, recordID int64, timeSlot string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.notified[userID]
	if !ok {
		set = make(map[string]struct{})
		t.notified[userID] = set
	}
	key := SlotKey(recordID, timeSlot)
	if _, exists := set[key]; exists {
		return false
	}
	set[key] = struct{}{}
	return true
}

// Release drops a claim whose delivery did not succeed.
func (t *Tracker) Release(userID, recordID int64, timeSlot string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	set, ok := t.notified[userID]
	if !ok {
		return
	}
	delete(set, SlotKey(recordID, timeSlot))
	if len(set) == 0 {
		delete(t.notified, userID)
	}
}

// Size returns the number of slots marked across all users.
func (t *Tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, set := range t.notified {
		n += len(set)
	}
	return n
}
