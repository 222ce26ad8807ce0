package main

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FailedFetchMessage is the only error text shown to users.
const FailedFetchMessage = "Failed to fetch photos."

var ErrGalleryClosed = errors.New("gallery closed")

// Gallery drives a GalleryState from a PhotoFetcher. Overlapping refreshes
// share one in-flight fetch.
type Gallery struct {
	state   *GalleryState
	fetcher PhotoFetcher
	log     *zap.Logger
	group   singleflight.Group
	closed  atomic.Bool
}

func NewGallery(state *GalleryState, fetcher PhotoFetcher, logger *zap.Logger) *Gallery {
	return &Gallery{
		state:   state,
		fetcher: fetcher,
		log:     logger.Named("gallery"),
	}
}

func (g *Gallery) State() *GalleryState {
	return g.state
}

// Start runs the initial fetch in the background.
func (g *Gallery) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- g.Refresh(ctx)
	}()
	return done
}

// Refresh fetches a new batch and applies the outcome to the state. A result
// that arrives after Close is dropped.
func (g *Gallery) Refresh(ctx context.Context) error {
	if g.closed.Load() {
		return ErrGalleryClosed
	}
	_, err, shared := g.group.Do("refresh", func() (interface{}, error) {
		g.state.BeginFetch()
		photos, err := g.fetcher.Fetch(ctx)
		if g.closed.Load() {
			g.log.Debug("discarding fetch result after close", zap.Bool("failed", err != nil))
			return nil, ErrGalleryClosed
		}
		if err != nil {
			g.log.Error("Error fetching data", zap.Error(err))
			g.state.FailFetch(FailedFetchMessage)
			return nil, err
		}
		g.log.Info("photos updated", zap.Int("count", len(photos)))
		g.state.CompleteFetch(photos)
		return nil, nil
	})
	if shared {
		g.log.Debug("refresh joined in-flight fetch")
	}
	return err
}

// Close detaches the gallery from its state.
func (g *Gallery) Close() {
	g.closed.Store(true)
}
