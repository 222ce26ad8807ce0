package main

import (
	"sync"
)

// Snapshot is a point-in-time copy of a GalleryState. LastError is empty
// when the most recent fetch did not fail.
type Snapshot struct {
	Photos     []PhotoRecord
	SearchTerm string
	IsLoading  bool
	LastError  string
}

func (s Snapshot) HasError() bool {
	return s.LastError != ""
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// GalleryState holds the photos, search text, loading flag and last error of
// one gallery. Every mutation notifies subscribers with a fresh Snapshot, in
// mutation order. Subscribers run on the mutating goroutine and must not
// block or mutate the state themselves.
type GalleryState struct {
	notifyMu sync.Mutex
	mu       sync.RWMutex

	photos     []PhotoRecord
	searchTerm string
	isLoading  bool
	lastError  string

	subscribers []subscriber
	nextId      int
}

func NewGalleryState() *GalleryState {
	return &GalleryState{isLoading: true}
}

func (gs *GalleryState) Snapshot() Snapshot {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return gs.snapshotLocked()
}

func (gs *GalleryState) snapshotLocked() Snapshot {
	photos := make([]PhotoRecord, len(gs.photos))
	copy(photos, gs.photos)
	return Snapshot{
		Photos:     photos,
		SearchTerm: gs.searchTerm,
		IsLoading:  gs.isLoading,
		LastError:  gs.lastError,
	}
}

// Subscribe registers fn for every future change and returns a function that
// removes it again.
func (gs *GalleryState) Subscribe(fn func(Snapshot)) func() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.nextId++
	id := gs.nextId
	gs.subscribers = append(gs.subscribers, subscriber{id: id, fn: fn})
	return func() {
		gs.mu.Lock()
		defer gs.mu.Unlock()
		for i, sub := range gs.subscribers {
			if sub.id == id {
				gs.subscribers = append(gs.subscribers[:i:i], gs.subscribers[i+1:]...)
				return
			}
		}
	}
}

func (gs *GalleryState) mutate(change func()) {
	gs.notifyMu.Lock()
	defer gs.notifyMu.Unlock()

	gs.mu.Lock()
	change()
	snap := gs.snapshotLocked()
	subs := make([]subscriber, len(gs.subscribers))
	copy(subs, gs.subscribers)
	gs.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

// BeginFetch marks a fetch as in flight and clears the previous error.
func (gs *GalleryState) BeginFetch() {
	gs.mutate(func() {
		gs.isLoading = true
		gs.lastError = ""
	})
}

// CompleteFetch replaces the photo list wholesale.
func (gs *GalleryState) CompleteFetch(photos []PhotoRecord) {
	stored := make([]PhotoRecord, len(photos))
	copy(stored, photos)
	gs.mutate(func() {
		gs.photos = stored
		gs.isLoading = false
		gs.lastError = ""
	})
}

// FailFetch records msg as the last error. Photos from the last successful
// fetch are kept.
func (gs *GalleryState) FailFetch(msg string) {
	gs.mutate(func() {
		gs.isLoading = false
		gs.lastError = msg
	})
}

func (gs *GalleryState) SetSearchTerm(term string) {
	gs.mutate(func() {
		gs.searchTerm = term
	})
}
