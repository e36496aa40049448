package adr

import "regexp"

var supersedesLinkRe = regexp.MustCompile(`(?m)^(Supersedes:[ \t]*)\[(\d+)\]\(([^)\n]*)\)`)

// RelinkSupersedes points every "Supersedes: [N](...)" line that references
// number at filename. Other content is returned unchanged.
func RelinkSupersedes(raw string, number uint32, filename string) string {
	return supersedesLinkRe.ReplaceAllStringFunc(raw, func(match string) string {
		sub := supersedesLinkRe.FindStringSubmatch(match)

		n, ok := ParseNumber(sub[2])
		if !ok || n != number || sub[3] == filename {
			return match
		}

		return sub[1] + "[" + sub[2] + "](" + filename + ")"
	})
}
