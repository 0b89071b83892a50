// Package dedup builds the lookup table of remote matches used to avoid
// duplicate submissions.
//
// Key is derived by KeyFor for both sides of the comparison: the converted
// wire payload of an extracted match and every remote match returned for the
// batch's date window. Both go through matches.NormalizeDate so a remote
// timestamp and a local calendar date compare equal.
package dedup
