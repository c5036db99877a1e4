// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Clamp01 pins v into [0, 1]. NaN becomes 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
