package main

import "strings"

// FilterPhotos returns the photos whose description contains term, ignoring
// case. The result keeps the input order and is rebuilt on every call.
func FilterPhotos(photos []PhotoRecord, term string) []PhotoRecord {
	needle := strings.ToLower(term)
	visible := make([]PhotoRecord, 0, len(photos))
	for _, photo := range photos {
		if strings.Contains(photo.MatchText(), needle) {
			visible = append(visible, photo)
		}
	}
	return visible
}
