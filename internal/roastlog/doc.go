// Package roastlog derives roast metrics from a session's event log.
//
// Every function is pure: inputs are never mutated, nothing is read from
// global state, and a missing prerequisite yields an explicit unknown value
// (see Seconds and Percent) instead of zero or a panic. Events are re-sorted
// by time offset on every call; the caller's order only breaks ties.
package roastlog
