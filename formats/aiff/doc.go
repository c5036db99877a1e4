// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes Audio Interchange File Format audio through
// github.com/go-audio/aiff. 8, 16, 24 and 32-bit PCM are accepted.
package aiff
