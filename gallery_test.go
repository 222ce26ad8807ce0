package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestGalleryRefreshSuccess(t *testing.T) {
	fetcher := &fakeFetcher{photos: mistyMountains()}
	g := NewGallery(NewGalleryState(), fetcher, zaptest.NewLogger(t))

	require.NoError(t, g.Refresh(context.Background()))

	snap := g.State().Snapshot()
	assert.False(t, snap.IsLoading)
	assert.False(t, snap.HasError())
	assert.Equal(t, mistyMountains(), snap.Photos)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestGalleryRefreshFailure(t *testing.T) {
	fetchErr := &FetchError{Message: "request failed", Err: errors.New("connection refused")}
	fetcher := &fakeFetcher{photos: mistyMountains()}
	g := NewGallery(NewGalleryState(), fetcher, zaptest.NewLogger(t))
	require.NoError(t, g.Refresh(context.Background()))

	fetcher.err = fetchErr
	err := g.Refresh(context.Background())
	require.ErrorIs(t, err, ErrFetch)

	snap := g.State().Snapshot()
	assert.False(t, snap.IsLoading)
	assert.Equal(t, "Failed to fetch photos.", snap.LastError)
	assert.Equal(t, mistyMountains(), snap.Photos, "photos from the last success are kept")
}

func TestGalleryRefreshPublishesLoading(t *testing.T) {
	fetcher := &fakeFetcher{photos: mistyMountains()}
	g := NewGallery(NewGalleryState(), fetcher, zaptest.NewLogger(t))

	var states []ViewStatus
	g.State().Subscribe(func(s Snapshot) { states = append(states, Project(s).Status) })
	require.NoError(t, g.Refresh(context.Background()))

	assert.Equal(t, []ViewStatus{StatusLoading, StatusReady}, states)
}

func TestGalleryOverlappingRefreshSharesFetch(t *testing.T) {
	fetcher := &fakeFetcher{
		photos:  mistyMountains(),
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
	}
	g := NewGallery(NewGalleryState(), fetcher, zaptest.NewLogger(t))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[0] = g.Refresh(context.Background())
	}()
	<-fetcher.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		errs[1] = g.Refresh(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)
	close(fetcher.release)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.EqualValues(t, 1, fetcher.calls.Load())
	assert.Equal(t, mistyMountains(), g.State().Snapshot().Photos)
}

func TestGalleryCloseDiscardsLateResult(t *testing.T) {
	fetcher := &fakeFetcher{
		photos:  mistyMountains(),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	g := NewGallery(NewGalleryState(), fetcher, zaptest.NewLogger(t))

	done := g.Start(context.Background())
	<-fetcher.started
	g.Close()
	close(fetcher.release)

	assert.ErrorIs(t, <-done, ErrGalleryClosed)
	snap := g.State().Snapshot()
	assert.True(t, snap.IsLoading)
	assert.Empty(t, snap.Photos)

	assert.ErrorIs(t, g.Refresh(context.Background()), ErrGalleryClosed)
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestGalleryStartRunsInitialFetch(t *testing.T) {
	fetcher := &fakeFetcher{photos: undescribed()}
	g := NewGallery(NewGalleryState(), fetcher, zaptest.NewLogger(t))

	require.NoError(t, <-g.Start(context.Background()))
	assert.Equal(t, undescribed(), g.State().Snapshot().Photos)
}
