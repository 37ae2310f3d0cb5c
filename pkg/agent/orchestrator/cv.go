package orchestrator

import "strings"

const defaultCVLimit = 4000

// sections dropped outright when a CV needs trimming.
var skipSections = []string{"reference", "declaration", "certif"}

// sections that mark content worth keeping.
var keepSections = []string{"skill", "experience", "education", "objective", "summary", "project"}

// TrimCV cuts a long CV down to its essential sections so the profile
// extraction turn stays inside the model's context budget. Short CVs
// pass through untouched.
func TrimCV(cvText string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = defaultCVLimit
	}
	if len(cvText) <= maxChars {
		return cvText
	}

	lines := strings.Split(cvText, "\n")
	var kept []string
	keptLen := 0
	inSection := false

	for _, line := range lines {
		lower := strings.ToLower(strings.TrimSpace(line))

		skip := false
		for _, s := range skipSections {
			if strings.Contains(lower, s) {
				skip = true
				break
			}
		}
		if skip {
			inSection = false
			continue
		}

		for _, k := range keepSections {
			if strings.Contains(lower, k) {
				inSection = true
				break
			}
		}

		if inSection || len(kept) < 50 {
			kept = append(kept, line)
			keptLen += len(line) + 1
		}
		if keptLen > maxChars {
			break
		}
	}

	result := strings.Join(kept, "\n")
	if len(result) > maxChars {
		result = result[:maxChars] + "\n[truncated]"
	}
	return result
}
