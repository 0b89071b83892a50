package matches

import "strings"

// teamAliases maps the lowercase form of known long or legacy names to the
// canonical name used by the remote API.
var teamAliases = map[string]string{
	"intercontinental football academy of new england": "IFA",
	"intercontinental fa":                              "IFA",
	"ifa":                                              "IFA",
	"new england football club":                        "NEFC",
	"new england fc":                                   "NEFC",
	"nefc":                                             "NEFC",
	"fc greater boston bolts":                          "Boston Bolts",
	"bolts":                                            "Boston Bolts",
	"seacoast united phantoms":                         "Seacoast United",
	"new york city football club":                      "NYCFC",
	"new england revolution academy":                   "New England Revolution",
	"revolution academy":                               "New England Revolution",
}

// CanonicalTeamName trims, collapses inner whitespace and applies the alias
// table. Unknown names are returned in their cleaned form.
func CanonicalTeamName(name string) string {
	cleaned := strings.Join(strings.Fields(name), " ")
	if alias, ok := teamAliases[strings.ToLower(cleaned)]; ok {
		return alias
	}
	return cleaned
}

// TeamKey is the case-insensitive key for a team name.
func TeamKey(name string) string {
	return strings.ToLower(CanonicalTeamName(name))
}

// DistinctTeams returns the canonical team names of ms in first-seen order.
func DistinctTeams(ms []Match) []string {
	seen := make(map[string]struct{}, len(ms)*2)
	var out []string
	for _, m := range ms {
		for _, name := range []string{m.HomeTeam, m.AwayTeam} {
			key := TeamKey(name)
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, CanonicalTeamName(name))
		}
	}
	return out
}
