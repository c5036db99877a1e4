// SPDX-License-Identifier: EPL-2.0

// Package errors holds the failure taxonomy shared by the store, the player
// layer and the playback engine, and turns those failures into the short
// messages posted back to the host.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat   = errors.New("unsupported audio format")
	ErrIO                  = errors.New("i/o failure")
	ErrMissingAsset        = errors.New("override file is missing")
	ErrPlaybackUnavailable = errors.New("no player could open the override")
	ErrOutOfResources      = errors.New("audio engine out of resources")
	ErrUnknownTrack        = errors.New("unknown track")
	ErrQueueFull           = errors.New("work queue is full")
	ErrClosed              = errors.New("closed")
)

// IOError marks err as an ErrIO while keeping it inspectable.
func IOError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}

// Silent reports whether a failure self-corrects and must not reach the user.
func Silent(err error) bool {
	return err == nil || errors.Is(err, ErrMissingAsset)
}

// UserMessage renders the host-visible message for a failure on the named
// track. It returns "" for failures that are handled silently.
func UserMessage(name string, err error) string {
	if Silent(err) {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return fmt.Sprintf("Couldn't override %s: that file type isn't supported.", name)
	case errors.Is(err, ErrUnknownTrack):
		return fmt.Sprintf("Couldn't override %s: no track by that name.", name)
	case errors.Is(err, ErrPlaybackUnavailable):
		return fmt.Sprintf("Couldn't play the override for %s, it has been removed.", name)
	case errors.Is(err, ErrOutOfResources):
		return fmt.Sprintf("Couldn't start the override for %s right now.", name)
	case errors.Is(err, ErrQueueFull):
		return fmt.Sprintf("Too much work queued, try %s again in a moment.", name)
	case errors.Is(err, ErrIO):
		return fmt.Sprintf("Something went wrong creating the override for %s.", name)
	}

	return fmt.Sprintf("Something went wrong with %s: %s", name, err)
}
