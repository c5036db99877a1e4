// SPDX-License-Identifier: EPL-2.0

// Package musicreplacer swaps a host application's music for user supplied
// overrides while the host keeps believing its own track is playing.
//
// The host drives a Replacer from its frame goroutine with two callbacks:
//
//	r.TrackTick(nowPlaying) // whenever the visible track may have changed
//	r.FrameTick()           // every frame
//
// Everything that touches the network or copies files (creating and
// removing overrides, bulk imports, presets, search) is queued on a single
// background worker and reports failures through Host.PostUserMessage.
// The frame callbacks never wait on that worker; a new override becomes
// audible on the first TrackTick after it has been written.
//
// # Packages
//
//   - engine: the per-frame state machine (fades, loop and mute handling)
//   - store: the override catalog and its cache directory
//   - player: file playback on an audio Output
//   - search: paged search for remote overrides
//   - kv: sqlite, redis or in-memory storage for the catalog
//   - audio, formats: decoders for .wav, .mp3, .ogg and .aiff
//
// # Quick Start
//
//	cfg, _ := config.Load()
//	r, err := musicreplacer.New(cfg, host)
//	if err != nil {
//		return err
//	}
//	defer r.Shutdown(context.Background())
//
//	r.OverrideWithFile("Harmony", "/home/me/music/harmony.wav")
package musicreplacer
