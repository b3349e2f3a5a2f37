// Package analysis computes derived seismicity statistics over immutable
// catalog snapshots.
//
// # Methods
//
// Magnitude of completeness (Mc):
//
//	Estimated by the maximum-curvature method: magnitudes are binned into
//	fixed 0.1-unit bins and Mc is the midpoint of the most populated bin.
//	When several bins tie for the maximum, the lowest-magnitude bin wins.
//	This is the only completeness estimator supported; research-grade
//	alternatives (goodness-of-fit, b-value stability) are out of scope.
//
// Gutenberg-Richter law:
//
//	log10(N(>=M)) = a - b*M, fitted with the Aki (1965) maximum-likelihood
//	b-value estimator, including the standard half-bin correction for
//	0.1-unit magnitude binning:
//
//	  b = log10(e) / (meanMag - (Mc - 0.05))
//	  a = log10(N)  + b*Mc
//
// Rate anomalies:
//
//	A forward-anchored sliding window: for each event in the time-sorted
//	catalog, the window starts at that event and extends windowDays forward,
//	inclusive of its upper bound. Consecutive windows overlap heavily; this
//	is deliberate and must not be reinterpreted as centered or tiling bins,
//	which would change which periods are flagged. Window counts are compared
//	against their own population mean and population standard deviation
//	(divide by n, not n-1). A zero standard deviation reports no anomalies.
//
// Spatio-temporal clustering:
//
//	The fraction of unordered event pairs that are simultaneously within a
//	spatial radius (haversine great-circle distance, Earth radius 6371 km)
//	and a temporal window. Quadratic in catalog size by design; catalogs are
//	bounded by provider query limits.
//
// All functions are pure: they read a Catalog snapshot, perform no I/O, and
// share no state between calls.
package analysis
