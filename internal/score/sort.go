package score

import "sort"

// SortFindings orders findings by points attributed (highest first), then
// by line ascending. File-wide findings (line 0) come before line-specific
// ones with the same points.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Points != findings[j].Points {
			return findings[i].Points > findings[j].Points
		}
		return findings[i].Line < findings[j].Line
	})
}
