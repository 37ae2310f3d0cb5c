package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

const (
	maxSkills = 10
	maxTitles = 3
)

// Location classification values.
const (
	LocationRemote  = "remote"
	LocationHybrid  = "hybrid"
	LocationOnsite  = "onsite"
	LocationUnknown = "unknown"
)

// Profile is the structured CV profile produced by the pipeline.
type Profile struct {
	Skills          []string `json:"skills"`
	ExperienceYears *int     `json:"experience_years"`
	Titles          []string `json:"titles"`
	Summary         string   `json:"summary"`
}

// IsEmpty reports whether extraction found nothing usable.
func (p Profile) IsEmpty() bool {
	return len(p.Skills) == 0 && p.Summary == ""
}

// Job is a single scored job listing.
type Job struct {
	Title    string `json:"title"`
	Company  string `json:"company"`
	Score    int    `json:"score"`
	Reason   string `json:"reason"`
	URL      string `json:"url"`
	Location string `json:"location"`
}

// Valid reports whether the listing carries enough identity to show a user:
// a URL, or a company that is not the "Unknown" placeholder.
func (j Job) Valid() bool {
	if j.URL != "" {
		return true
	}
	return j.Company != "" && j.Company != "Unknown"
}

// JobDetail is the enrichment record scraped for a selected listing.
type JobDetail struct {
	URL          string   `json:"url"`
	Salary       *string  `json:"salary"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Benefits     []string `json:"benefits"`
	ApplyURL     string   `json:"apply_url"`
}

var digitsRe = regexp.MustCompile(`\d+`)

// ParseProfile extracts a profile record from raw model output. JSON is
// tried first, then the markdown fallback. Never fails; absent fields
// resolve to zero values.
func ParseProfile(text string) Profile {
	if raw, ok := Extract(text, ShapeObject); ok {
		var data map[string]interface{}
		if err := json.Unmarshal(raw, &data); err == nil {
			return normalizeProfile(data)
		}
	}
	return parseProfileMarkdown(text)
}

// ParseJobs extracts job listings from raw model output and drops invalid
// entries. JSON array first, markdown fallback second.
func ParseJobs(text string) []Job {
	if raw, ok := Extract(text, ShapeArray); ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			jobs := make([]Job, 0, len(items))
			for _, item := range items {
				var data map[string]interface{}
				if err := json.Unmarshal(item, &data); err != nil {
					continue
				}
				jobs = append(jobs, normalizeJob(data))
			}
			return filterValid(jobs)
		}
	}
	return filterValid(parseJobsMarkdown(text))
}

// ParseJobDetails extracts enrichment records. No markdown fallback: the
// detail phase prompts for raw JSON and an unparseable response means no
// details, not an error.
func ParseJobDetails(text string) []JobDetail {
	raw, ok := Extract(text, ShapeArray)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	details := make([]JobDetail, 0, len(items))
	for _, item := range items {
		var data map[string]interface{}
		if err := json.Unmarshal(item, &data); err != nil {
			continue
		}
		details = append(details, normalizeJobDetail(data))
	}
	return details
}

// DedupeJobs collapses listings whose titles match after trimming and case
// folding, keeping the first occurrence.
func DedupeJobs(jobs []Job) []Job {
	seen := make(map[string]bool, len(jobs))
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		key := strings.ToLower(strings.TrimSpace(j.Title))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, j)
	}
	return out
}

func filterValid(jobs []Job) []Job {
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Valid() {
			out = append(out, j)
		}
	}
	return out
}

func normalizeProfile(data map[string]interface{}) Profile {
	skills := stringSlice(data, "skills")
	if len(skills) > maxSkills {
		skills = skills[:maxSkills]
	}
	titles := firstSlice(data, "titles", "job_titles", "roles")
	if len(titles) > maxTitles {
		titles = titles[:maxTitles]
	}
	return Profile{
		Skills:          skills,
		ExperienceYears: intPtr(data, "experience_years", "years", "exp"),
		Titles:          titles,
		Summary:         firstString(data, "summary", "bio", "description"),
	}
}

func normalizeJob(data map[string]interface{}) Job {
	return Job{
		Title:    firstString(data, "title", "job_title", "position"),
		Company:  firstString(data, "company", "company_name", "employer"),
		Score:    normalizeScore(data["score"]),
		Reason:   firstString(data, "reason", "match_reason", "why"),
		URL:      firstString(data, "url", "link", "posting_url"),
		Location: NormalizeLocation(firstString(data, "location")),
	}
}

func normalizeJobDetail(data map[string]interface{}) JobDetail {
	var salary *string
	if s := firstString(data, "salary"); s != "" {
		salary = &s
	}
	return JobDetail{
		URL:          firstString(data, "url"),
		Salary:       salary,
		Description:  firstString(data, "description"),
		Requirements: stringSlice(data, "requirements"),
		Benefits:     stringSlice(data, "benefits"),
		ApplyURL:     firstString(data, "apply_url", "applyUrl"),
	}
}

// normalizeScore accepts a number, or a string with digits embedded in text
// ("85%", "Score: 85"). The first run of digits wins; no digits means 0.
func normalizeScore(v interface{}) int {
	switch s := v.(type) {
	case float64:
		return int(s)
	case int:
		return s
	case string:
		if m := digitsRe.FindString(s); m != "" {
			return atoi(m)
		}
	}
	return 0
}

// NormalizeLocation classifies a free-form location string. Priority order
// matters: "hybrid remote" is remote.
func NormalizeLocation(loc string) string {
	l := strings.ToLower(loc)
	switch {
	case l == "":
		return LocationUnknown
	case strings.Contains(l, "remote"):
		return LocationRemote
	case strings.Contains(l, "hybrid"):
		return LocationHybrid
	case strings.Contains(l, "onsite"), strings.Contains(l, "on-site"), strings.Contains(l, "office"):
		return LocationOnsite
	default:
		return LocationUnknown
	}
}

// --- field resolution helpers ---

func firstString(data map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := data[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
			if f, ok := v.(float64); ok {
				return trimFloat(f)
			}
		}
	}
	return ""
}

func firstSlice(data map[string]interface{}, keys ...string) []string {
	for _, k := range keys {
		if out := stringSlice(data, k); len(out) > 0 {
			return out
		}
	}
	return []string{}
}

func stringSlice(data map[string]interface{}, key string) []string {
	v, ok := data[key]
	if !ok {
		return []string{}
	}
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func intPtr(data map[string]interface{}, keys ...string) *int {
	for _, k := range keys {
		switch v := data[k].(type) {
		case float64:
			n := int(v)
			return &n
		case string:
			if m := digitsRe.FindString(v); m != "" {
				n := atoi(m)
				return &n
			}
		}
	}
	return nil
}

// atoi parses a digit run; runs too long to fit an int yield 0 rather
// than wrapping.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return strings.TrimSuffix(strings.TrimSuffix(jsonNumber(f), ".0"), ".")
	}
	return jsonNumber(f)
}

func jsonNumber(f float64) string {
	b, _ := json.Marshal(f)
	return string(b)
}
