package extract

import (
	"reflect"
	"testing"
)

func TestParseJobsRoundTrip(t *testing.T) {
	text := `[
		{"title": "Backend Engineer", "company": "Acme", "score": 92, "reason": "Go match", "url": "https://jobs.acme.dev/1", "location": "Remote (EU)"},
		{"title": "Platform Engineer", "company": "Initech", "score": 80, "reason": "infra", "url": "https://initech.jobs/2", "location": "Hybrid - Berlin"}
	]`
	jobs := ParseJobs(text)
	want := []Job{
		{Title: "Backend Engineer", Company: "Acme", Score: 92, Reason: "Go match", URL: "https://jobs.acme.dev/1", Location: LocationRemote},
		{Title: "Platform Engineer", Company: "Initech", Score: 80, Reason: "infra", URL: "https://initech.jobs/2", Location: LocationHybrid},
	}
	if !reflect.DeepEqual(jobs, want) {
		t.Errorf("jobs = %+v\nwant %+v", jobs, want)
	}
}

func TestParseJobsSynonymKeys(t *testing.T) {
	text := `[{"job_title": "Data Engineer", "employer": "Umbrella", "link": "https://u.example/3", "match_reason": "pipelines", "score": "88%"}]`
	jobs := ParseJobs(text)
	if len(jobs) != 1 {
		t.Fatalf("len(jobs) = %d, want 1", len(jobs))
	}
	j := jobs[0]
	if j.Title != "Data Engineer" || j.Company != "Umbrella" || j.URL != "https://u.example/3" {
		t.Errorf("synonym resolution failed: %+v", j)
	}
	if j.Reason != "pipelines" {
		t.Errorf("reason = %q", j.Reason)
	}
	if j.Score != 88 {
		t.Errorf("score = %d, want 88", j.Score)
	}
	if j.Location != LocationUnknown {
		t.Errorf("location = %q, want unknown", j.Location)
	}
}

func TestParseJobsDropsInvalid(t *testing.T) {
	text := `[
		{"title": "Ghost Role", "company": "Unknown", "url": ""},
		{"title": "No Identity", "company": "", "url": ""},
		{"title": "Keeper", "company": "Unknown", "url": "https://keep.example/1"},
		{"title": "Also Keeper", "company": "RealCo", "url": ""}
	]`
	jobs := ParseJobs(text)
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2: %+v", len(jobs), jobs)
	}
	if jobs[0].Title != "Keeper" || jobs[1].Title != "Also Keeper" {
		t.Errorf("wrong survivors: %+v", jobs)
	}
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
	}{
		{float64(85), 85},
		{"85%", 85},
		{"Score: 85", 85},
		{"Score: 85/100", 85},
		{"no digits here", 0},
		{"Score: 99999999999999999999", 0}, // digit run too long for an int
		{nil, 0},
	}
	for _, tt := range tests {
		if got := normalizeScore(tt.in); got != tt.want {
			t.Errorf("normalizeScore(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLocation(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Remote", LocationRemote},
		{"fully remote (US)", LocationRemote},
		{"Hybrid remote", LocationRemote}, // remote wins the priority order
		{"Hybrid, 2 days office", LocationHybrid},
		{"On-site", LocationOnsite},
		{"Onsite in Austin", LocationOnsite},
		{"Office based", LocationOnsite},
		{"Berlin", LocationUnknown},
		{"", LocationUnknown},
	}
	for _, tt := range tests {
		if got := NormalizeLocation(tt.in); got != tt.want {
			t.Errorf("NormalizeLocation(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseProfile(t *testing.T) {
	text := `{"skills": ["Go", "Postgres", "Kubernetes"], "experience_years": 7, "titles": ["Backend Engineer"], "summary": "Backend engineer focused on infra."}`
	p := ParseProfile(text)
	if len(p.Skills) != 3 || p.Skills[0] != "Go" {
		t.Errorf("skills = %v", p.Skills)
	}
	if p.ExperienceYears == nil || *p.ExperienceYears != 7 {
		t.Errorf("experience = %v", p.ExperienceYears)
	}
	if len(p.Titles) != 1 || p.Titles[0] != "Backend Engineer" {
		t.Errorf("titles = %v", p.Titles)
	}
}

func TestParseProfileSkillsTruncated(t *testing.T) {
	text := `{"skills": ["a","b","c","d","e","f","g","h","i","j","k","l"], "summary": "s"}`
	p := ParseProfile(text)
	if len(p.Skills) != maxSkills {
		t.Errorf("len(skills) = %d, want %d", len(p.Skills), maxSkills)
	}
}

func TestParseProfileSynonyms(t *testing.T) {
	text := `{"skills": ["Go"], "years": 4, "roles": ["SRE"], "bio": "keeps things up"}`
	p := ParseProfile(text)
	if p.ExperienceYears == nil || *p.ExperienceYears != 4 {
		t.Errorf("experience = %v", p.ExperienceYears)
	}
	if len(p.Titles) != 1 || p.Titles[0] != "SRE" {
		t.Errorf("titles = %v", p.Titles)
	}
	if p.Summary != "keeps things up" {
		t.Errorf("summary = %q", p.Summary)
	}
}

func TestParseProfileNoContent(t *testing.T) {
	p := ParseProfile("Thanks! Let me know when you want to start searching.")
	if !p.IsEmpty() {
		t.Errorf("expected empty profile, got %+v", p)
	}
	if p.Skills == nil || p.Titles == nil {
		t.Error("empty profile must use empty slices, not nil")
	}
}

func TestParseJobDetails(t *testing.T) {
	text := "```json\n" + `[{"url": "https://a.example", "salary": "90-120k EUR", "description": "desc", "requirements": ["Go"], "benefits": ["remote budget"], "apply_url": "https://a.example/apply"}]` + "\n```"
	details := ParseJobDetails(text)
	if len(details) != 1 {
		t.Fatalf("len(details) = %d, want 1", len(details))
	}
	d := details[0]
	if d.Salary == nil || *d.Salary != "90-120k EUR" {
		t.Errorf("salary = %v", d.Salary)
	}
	if d.ApplyURL != "https://a.example/apply" {
		t.Errorf("apply url = %q", d.ApplyURL)
	}
}

func TestDedupeJobs(t *testing.T) {
	jobs := []Job{
		{Title: "Senior Engineer", Company: "First"},
		{Title: "senior engineer ", Company: "Second"},
		{Title: "Staff Engineer", Company: "Third"},
	}
	out := DedupeJobs(jobs)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].Company != "First" {
		t.Errorf("dedupe must keep the first occurrence, got %+v", out[0])
	}
}

func TestClassify(t *testing.T) {
	jobsText := `[{"title": "Engineer", "company": "Acme", "score": 90, "url": "https://x.example"}]`
	c := Classify(jobsText, false)
	if c.Kind != KindJobSelection || len(c.Jobs) != 1 {
		t.Errorf("classification = %+v", c)
	}

	c = Classify(jobsText, true)
	if c.Kind != KindJobs {
		t.Errorf("detail phase kind = %v, want jobs", c.Kind)
	}

	profileText := `{"skills": ["Go"], "summary": "dev"}`
	c = Classify(profileText, false)
	if c.Kind != KindProfile || c.Profile == nil {
		t.Errorf("classification = %+v", c)
	}

	c = Classify("Happy to help with anything else!", false)
	if c.Kind != KindText {
		t.Errorf("kind = %v, want text", c.Kind)
	}
}
