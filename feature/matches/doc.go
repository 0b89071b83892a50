// Package matches defines the match records handed over by the scraper and
// their conversion into the remote API wire format.
//
// A Match is immutable once extracted. Its status is derived, never stored:
//
//   - the kickoff is in the future: scheduled
//   - both scores are concrete integers: completed
//   - anything else (TBD or missing scores): tbd
//
// Team names go through CanonicalTeamName before they are used as keys, so
// that long legal names and short display codes resolve to the same team.
package matches
