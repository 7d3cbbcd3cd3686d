package engine

import "regexp"

// matcher holds the compiled include/exclude sets for one run. Group and
// filter ordering is irrelevant: matching is set membership, not a priority
// chain.
type matcher struct {
	includes []*regexp.Regexp
	excludes []*regexp.Regexp
}

// compile collects every enabled filter from every enabled group. A regex
// filter whose pattern fails to compile is skipped and reported as a warning;
// literal keywords are quoted and cannot fail.
func compile(groups []FilterGroup) (*matcher, []Warning) {
	m := &matcher{}
	var warnings []Warning

	for _, g := range groups {
		if !g.Enabled {
			continue
		}
		for _, f := range g.Filters {
			if !f.Enabled {
				continue
			}

			pattern := f.Keyword
			if !f.Regex {
				pattern = regexp.QuoteMeta(pattern)
			}

			re, err := regexp.Compile("(?i)" + pattern)
			if err != nil {
				warnings = append(warnings, Warning{Group: g.Name, Keyword: f.Keyword, Err: err})
				continue
			}

			switch f.Kind {
			case KindExclude:
				m.excludes = append(m.excludes, re)
			default:
				m.includes = append(m.includes, re)
			}
		}
	}

	return m, warnings
}

// keep reports whether a line survives the filter set: it must be an
// include-candidate (the include set is empty, or at least one include
// matches) and must not match any exclude. Exclusion always wins.
func (m *matcher) keep(line string) bool {
	included := len(m.includes) == 0
	for _, re := range m.includes {
		if re.MatchString(line) {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	for _, re := range m.excludes {
		if re.MatchString(line) {
			return false
		}
	}

	return true
}
