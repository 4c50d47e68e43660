package client

import (
	"fmt"
	"regexp"
	"strings"
)

// YouTube video IDs are 11 characters
const videoIDLength = 11

// Video ID: 11 alphanumeric/underscore/dash characters
var videoIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{11}$`)

// NormalizeVideoID trims the identifier and rejects empty input. The identifier is
// otherwise opaque: sources other than YouTube may use different formats.
func NormalizeVideoID(videoID string) (string, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return "", fmt.Errorf("video ID cannot be empty")
	}
	return videoID, nil
}

// LooksLikeYouTubeID reports whether the identifier has the canonical YouTube shape
func LooksLikeYouTubeID(videoID string) bool {
	return len(videoID) == videoIDLength && videoIDPattern.MatchString(videoID)
}
