package main

import (
	"context"
	"strings"
)

const NoDescription = "No description"

// PhotoRecord is one fetched photo. Records are never mutated after a fetch.
type PhotoRecord struct {
	Id             string `json:"id"`
	AltDescription string `json:"altDescription,omitempty"`
	ThumbnailUrl   string `json:"thumbnailUrl"`
	PageUrl        string `json:"pageUrl"`
	Artist         string `json:"artist,omitempty"`
}

// MatchText is the text searched by FilterPhotos. An absent description is "".
func (p PhotoRecord) MatchText() string {
	return strings.ToLower(p.AltDescription)
}

func (p PhotoRecord) DisplayDescription() string {
	if p.AltDescription == "" {
		return NoDescription
	}
	return strings.ToLower(p.AltDescription)
}

// PhotoFetcher yields one batch of photos per call.
type PhotoFetcher interface {
	Fetch(ctx context.Context) ([]PhotoRecord, error)
}
