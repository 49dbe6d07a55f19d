// Package domain models National Hurricane Center (NHC) advisory data and
// the derived constraint state for tropical cyclones.
//
// # Data Source
//
// Advisories originate from the NHC CurrentStorms feed at
// https://www.nhc.noaa.gov/CurrentStorms.json. The upstream advisory-fetch
// service polls the feed on the 6-hour advisory cadence, merges in
// environmental estimates (SST, deep-layer shear, potential intensity) from
// the environment-estimation service, and publishes one flat JSON document
// per active storm to the Kafka source topic.
//
// # Advisory Conventions
//
// Storm identifiers:
//
//	Basin + number + year: "AL092026" = Atlantic storm 9 of 2026.
//	Identifiers are reused across seasons, so a fresh timeline must be
//	started whenever an identifier reappears after archival.
//
// Intensity and pressure:
//
//	Intensity is 1-minute sustained wind in knots. Central pressure is in
//	millibars and may be unreported early in a storm's life; it is optional
//	in the payload and carried as a pointer.
//
// Environmental block:
//
//	SST in degrees Celsius, 200-850 mb wind shear in knots, potential
//	intensity (the thermodynamic ceiling) in knots, plus a source tag
//	("ships", "cira", or "climatology"). The block is optional; when absent
//	the service fills it from the climatology estimator before scoring.
//
// # Constraint State
//
// Each advisory cycle produces one immutable ConstraintSnapshot holding the
// three normalized constraint scores:
//
//	I (indicative):  thermodynamic headroom, 1 - intensity/ceiling
//	R (relational):  environmental favorability from shear, SST, latitude
//	S (semantic):    structural coherence proxy from classification and the
//	                 pressure-wind relationship
//
// and their product L (admissibility). S is an acknowledged proxy pending a
// direct structural measurement such as GOES-16 eye detection; it is computed
// behind the constraint package's scoring seam so a higher-fidelity source
// can replace it without touching downstream contracts.
//
// # Error Taxonomy
//
// [DataError] marks input that fails physical sanity checks (negative wind,
// missing potential-intensity ceiling) before scoring; the cycle for that
// storm is skipped, never clamped into range. [SequenceError] marks an
// attempted append of an out-of-order or duplicate timestamp to a timeline;
// the append is rejected and history is never reordered.
package domain
