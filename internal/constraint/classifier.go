package constraint

import (
	"github.com/couchcryptid/cyclone-constraint-service/internal/domain"
)

// Classify assigns a regime from the current snapshot's smoothed scores and
// the immediately prior snapshot. It is a pure function: identical arguments
// always yield the identical label, and no other history is consulted.
//
// Rules fire in a fixed priority order, first match wins. COLLAPSE is
// evaluated first as a deliberate policy choice: the safety signal of
// structural failure outranks the opportunity signal of an RI setup, so a
// snapshot satisfying both classifies as COLLAPSE.
//
// For a timeline's first snapshot (prev == nil) the decline comparisons have
// nothing to compare against, so only the magnitude-only conditions can
// fire: the decline branch of COLLAPSE and the whole of DECAY are skipped.
func (e *Engine) Classify(snap domain.ConstraintSnapshot, prev *domain.ConstraintSnapshot) domain.Regime {
	cal := e.cal

	// 1. Structural collapse: absolute floor, or a sharp relative decline.
	if snap.Semantic < cal.CollapseStructure {
		return domain.RegimeCollapse
	}
	if prev != nil && snap.Semantic < prev.Semantic*(1-cal.CollapseDecline) {
		return domain.RegimeCollapse
	}

	// 2. Rapid-intensification candidate: all three axes simultaneously open.
	if snap.Indicative > cal.RIHeadroom &&
		snap.Relational > cal.RIEnvironment &&
		snap.Semantic > cal.RIStructure {
		return domain.RegimeRICandidate
	}

	// 3. Peak limited: organized storm near its thermodynamic ceiling.
	if snap.Indicative < cal.PeakHeadroom && snap.Semantic > cal.RIStructure {
		return domain.RegimePeakLimited
	}

	// 4. General decay: every axis lost ground since the last cycle.
	if prev != nil && snap.Declined(*prev) {
		return domain.RegimeDecay
	}

	// 5. Default; never fails to match.
	return domain.RegimeStable
}
