package extract

import (
	"regexp"
	"strings"
)

// Markdown fallback: when every JSON strategy fails, field values are pulled
// out of labeled lines with synonym patterns per field. The output shapes
// are identical to the JSON path so downstream code stays shape-agnostic.

var (
	skillsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*Skills?:\*\*\s*([^\n*]+)`),
		regexp.MustCompile(`(?i)[-•]\s*Skills?:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Skills?:\s*([^\n]+)`),
	}
	experiencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*Experience:\*\*\s*~?(\d+)`),
		regexp.MustCompile(`(?i)(\d+)\+?\s*years?\s*(?:of\s*)?experience`),
		regexp.MustCompile(`(?i)experience[:\s]+~?(\d+)`),
	}
	titlesPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*Titles?:\*\*\s*([^\n*]+)`),
		regexp.MustCompile(`(?i)[-•]\s*Titles?:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)(?:Job\s*)?Titles?:\s*([^\n]+)`),
	}
	summaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\*\*Summary:\*\*\s*([^\n]+)`),
		regexp.MustCompile(`(?i)[-•]\s*Summary:\s*([^\n]+)`),
		regexp.MustCompile(`(?i)Summary:\s*([^\n]+)`),
	}

	numberedSplitRe = regexp.MustCompile(`\n(?:\d+[.)]\s+\*\*|###?\s*\d+)`)
	bulletSplitRe   = regexp.MustCompile(`\n[-•]\s+\*\*`)

	titleScoreRe   = regexp.MustCompile(`^([^*]+)\*\*\s*(?:at\s+([^(]+))?\s*\(Score:\s*(\d+)`)
	titleCompanyRe = regexp.MustCompile(`^([^*]+)\*\*\s*[-–]\s*(.+)`)
	titleOnlyRe    = regexp.MustCompile(`^([^*]+)\*\*`)
	scoreLineRe    = regexp.MustCompile(`Score:\s*(\d+)`)
	companyLineRe  = regexp.MustCompile(`Company:\s*([^\n]+)`)
	reasonPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Match|Reason|Why):\s*([^\n]+)`),
		regexp.MustCompile(`(?i)[-•]\s*(?:Match|Reason):\s*([^\n]+)`),
	}
	markdownLinkRe = regexp.MustCompile(`]\((https?://[^)]+)\)`)
	plainURLRe     = regexp.MustCompile(`(?:URL|Link)?:?\s*(https?://[^\s)]+)`)

	remoteWordRe = regexp.MustCompile(`(?i)\bremote\b`)
	hybridWordRe = regexp.MustCompile(`(?i)\bhybrid\b`)
	onsiteWordRe = regexp.MustCompile(`(?i)\b(?:onsite|on-site|office)\b`)

	listSepRe = regexp.MustCompile(`[,;]`)
)

func parseProfileMarkdown(text string) Profile {
	p := Profile{Skills: []string{}, Titles: []string{}}

	if m := firstMatch(skillsPatterns, text); m != "" {
		p.Skills = splitList(m)
		if len(p.Skills) > maxSkills {
			p.Skills = p.Skills[:maxSkills]
		}
	}
	if m := firstMatch(experiencePatterns, text); m != "" {
		n := atoi(m)
		p.ExperienceYears = &n
	}
	if m := firstMatch(titlesPatterns, text); m != "" {
		p.Titles = splitList(m)
		if len(p.Titles) > maxTitles {
			p.Titles = p.Titles[:maxTitles]
		}
	}
	if m := firstMatch(summaryPatterns, text); m != "" {
		p.Summary = m
	}
	return p
}

func parseJobsMarkdown(text string) []Job {
	jobs := splitAndParse(numberedSplitRe, text)
	if len(jobs) == 0 {
		jobs = splitAndParse(bulletSplitRe, text)
	}
	return jobs
}

func splitAndParse(splitter *regexp.Regexp, text string) []Job {
	blocks := splitter.Split(text, -1)
	if len(blocks) < 2 {
		return nil
	}
	var jobs []Job
	for _, block := range blocks[1:] {
		job := parseJobBlock(block)
		if job.Title != "" {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

func parseJobBlock(block string) Job {
	job := Job{Company: "Unknown", Location: LocationUnknown}
	scoreSet := false

	titleLine := block
	if i := strings.IndexByte(block, '\n'); i >= 0 {
		titleLine = block[:i]
	}

	if m := titleScoreRe.FindStringSubmatch(titleLine); m != nil {
		job.Title = strings.TrimSpace(m[1])
		if m[2] != "" {
			job.Company = strings.TrimSpace(m[2])
		}
		job.Score = atoi(m[3])
		scoreSet = true
	} else if m := titleCompanyRe.FindStringSubmatch(titleLine); m != nil {
		job.Title = strings.TrimSpace(m[1])
		job.Company = strings.TrimSpace(m[2])
	} else if m := titleOnlyRe.FindStringSubmatch(titleLine); m != nil {
		job.Title = strings.TrimSpace(m[1])
	}

	if !scoreSet {
		if m := scoreLineRe.FindStringSubmatch(block); m != nil {
			job.Score = atoi(m[1])
		}
	}
	if job.Company == "Unknown" {
		if m := companyLineRe.FindStringSubmatch(block); m != nil {
			job.Company = strings.TrimSpace(m[1])
		}
	}
	if m := firstMatch(reasonPatterns, block); m != "" {
		job.Reason = m
	}

	if m := markdownLinkRe.FindStringSubmatch(block); m != nil {
		job.URL = m[1]
	} else if m := plainURLRe.FindStringSubmatch(block); m != nil {
		job.URL = strings.TrimRight(m[1], ".,;")
	}

	switch {
	case remoteWordRe.MatchString(block):
		job.Location = LocationRemote
	case hybridWordRe.MatchString(block):
		job.Location = LocationHybrid
	case onsiteWordRe.MatchString(block):
		job.Location = LocationOnsite
	}

	return job
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func splitList(s string) []string {
	parts := listSepRe.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
