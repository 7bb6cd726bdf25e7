// Package flip detects face-up/face-down transitions from device pitch.
package flip

import "math"

// PitchThreshold bounds the face-up band: |pitch| < π/4.
const PitchThreshold = math.Pi / 4

// faceDownPitch is the |pitch| a device must exceed when leaving the
// face-up band for the exit to count as a flip.
const faceDownPitch = math.Pi/2 + PitchThreshold

// IsFaceUp reports whether pitch lies strictly inside the face-up band.
func IsFaceUp(pitch float64) bool {
	return pitch < PitchThreshold && pitch > -PitchThreshold
}

// Tracker holds one optional face-up reading. The zero value is unset and
// ready to use. A Tracker is not safe for concurrent use; the owner
// serializes access.
type Tracker struct {
	faceUp bool
	set    bool
}

// State returns the last known orientation; ok is false while unset.
func (t *Tracker) State() (faceUp, ok bool) {
	return t.faceUp, t.set
}

// Initialized reports whether the tracker has a reading.
func (t *Tracker) Initialized() bool {
	return t.set
}

// Reset forgets the current reading.
func (t *Tracker) Reset() {
	t.faceUp = false
	t.set = false
}

// Prime sets the reading from pitch if the tracker is unset. It never
// reports a flip. A non-finite pitch leaves the tracker unset.
func (t *Tracker) Prime(pitch float64) {
	if !t.set && usable(pitch) {
		t.faceUp = IsFaceUp(pitch)
		t.set = true
	}
}

// Observe feeds one pitch reading and reports whether it completes a flip.
//
// Leaving the face-up band only counts once the device has pitched past
// vertical plus the band margin; re-entering the band always counts. Any
// other change of band is recorded silently. A non-finite pitch is not a
// reading: it never flips and leaves the state as it was.
func (t *Tracker) Observe(pitch float64) bool {
	if !usable(pitch) {
		return false
	}
	if !t.set {
		t.Prime(pitch)
		return false
	}

	wasFaceUp := t.faceUp
	isFaceUp := IsFaceUp(pitch)

	flipped := (wasFaceUp && !isFaceUp && math.Abs(pitch) > faceDownPitch) ||
		(!wasFaceUp && isFaceUp)

	t.faceUp = isFaceUp
	return flipped
}

func usable(pitch float64) bool {
	return !math.IsNaN(pitch) && !math.IsInf(pitch, 0)
}
