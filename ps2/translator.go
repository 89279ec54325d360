package ps2

import (
	"errors"

	"github.com/Alia5/hid2ps2/hid"
)

// MaxEvents bounds the number of scan codes one Translate call may emit.
// Exceeding it fails the whole call so work per report stays constant and
// the caller gets a back-pressure signal instead of silent drops.
const MaxEvents = 8

// ErrTooManyEvents reports that a snapshot pair produced more transitions
// than MaxEvents. The translator state is left untouched, so the same
// snapshot can be retried once downstream has drained.
var ErrTooManyEvents = errors.New("ps2: too many key transitions in one report")

// Translator diffs successive keyboard snapshots into ordered scan code
// events. It owns the previously accepted snapshot; the zero value (empty
// previous state) is ready to use.
//
// The translator is not safe for concurrent use. The bridge loop is its
// only caller.
type Translator struct {
	prev hid.Snapshot
}

// Translate compares cur against the previous snapshot and returns the
// scan codes for every transition between them, in order: modifier
// changes first (fixed canonical order), then releases, then presses in
// cur's key order. An unchanged state yields an empty, nil-error result.
//
// The previous snapshot is replaced by cur only when translation
// succeeds.
func (t *Translator) Translate(cur hid.Snapshot) ([]ScanCode, error) {
	events := make([]ScanCode, 0, MaxEvents)

	changed := t.prev.Modifiers ^ cur.Modifiers
	for _, m := range modifierOrder {
		if changed&m.mask == 0 {
			continue
		}
		if len(events) == MaxEvents {
			return nil, ErrTooManyEvents
		}
		pressed := cur.Modifiers&m.mask != 0
		events = append(events, transition(m.code, m.extended, pressed))
	}

	// Releases strictly precede presses so a key swapped within one
	// report reaches the host in the order it happened.
	for i := uint8(0); i < t.prev.Count; i++ {
		usage := t.prev.Keys[i]
		if cur.Contains(usage) {
			continue
		}
		code, extended, ok := Lookup(usage)
		if !ok {
			continue // unmapped keys are skipped, not an error
		}
		if len(events) == MaxEvents {
			return nil, ErrTooManyEvents
		}
		if extended {
			events = append(events, ExtendedBreakCode(code))
		} else {
			events = append(events, BreakCode(code))
		}
	}

	for i := uint8(0); i < cur.Count; i++ {
		usage := cur.Keys[i]
		if t.prev.Contains(usage) {
			continue
		}
		code, extended, ok := Lookup(usage)
		if !ok {
			continue
		}
		if len(events) == MaxEvents {
			return nil, ErrTooManyEvents
		}
		if extended {
			events = append(events, ExtendedMakeCode(code))
		} else {
			events = append(events, MakeCode(code))
		}
	}

	t.prev = cur
	return events, nil
}

// Reset forgets the previous snapshot. Called on device disconnect or
// protocol reset so the next report diffs against an all-released state.
func (t *Translator) Reset() {
	t.prev = hid.Snapshot{}
}

func transition(code byte, extended, pressed bool) ScanCode {
	switch {
	case pressed && extended:
		return ExtendedMakeCode(code)
	case pressed:
		return MakeCode(code)
	case extended:
		return ExtendedBreakCode(code)
	default:
		return BreakCode(code)
	}
}
