package extract

import (
	"reflect"
	"testing"
)

const markdownJobs = `Here are the best matches I found:

1. **Backend Engineer** at Acme Corp (Score: 91%)
   - Match: strong Go and Postgres overlap
   - [View posting](https://jobs.acme.dev/backend)
   - Remote position

2. **Platform Engineer** - Initech
   Score: 78
   Company: Initech
   Reason: Kubernetes experience
   URL: https://initech.jobs/platform
   Hybrid, Berlin office

3. **Mystery Role**
   No company, no link.
`

func TestParseJobsMarkdownFallback(t *testing.T) {
	jobs := ParseJobs(markdownJobs)
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2 (mystery role dropped): %+v", len(jobs), jobs)
	}

	first := jobs[0]
	if first.Title != "Backend Engineer" || first.Company != "Acme Corp" {
		t.Errorf("first = %+v", first)
	}
	if first.Score != 91 {
		t.Errorf("score = %d, want 91", first.Score)
	}
	if first.URL != "https://jobs.acme.dev/backend" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Location != LocationRemote {
		t.Errorf("location = %q", first.Location)
	}

	second := jobs[1]
	if second.Company != "Initech" || second.Score != 78 {
		t.Errorf("second = %+v", second)
	}
	if second.Location != LocationHybrid {
		t.Errorf("second location = %q", second.Location)
	}
}

func TestParseJobsMarkdownIdempotent(t *testing.T) {
	a := ParseJobs(markdownJobs)
	b := ParseJobs(markdownJobs)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("two runs differ:\n%+v\n%+v", a, b)
	}
}

func TestParseJobsMarkdownBullets(t *testing.T) {
	text := "Matches:\n- **Go Developer** - RealCo\n  https://realco.example/go\n- **Rust Developer** - OtherCo\n  https://otherco.example/rust\n"
	jobs := ParseJobs(text)
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2: %+v", len(jobs), jobs)
	}
	if jobs[0].Title != "Go Developer" || jobs[0].Company != "RealCo" {
		t.Errorf("first = %+v", jobs[0])
	}
}

func TestParseProfileMarkdown(t *testing.T) {
	text := `Got it! Here's what I pulled from your CV:

**Skills:** Go, PostgreSQL, Docker; Kubernetes
**Experience:** ~6 years
**Titles:** Backend Engineer, Tech Lead
**Summary:** Backend engineer with platform focus.

Ready to search?`

	p := ParseProfile(text)
	want := []string{"Go", "PostgreSQL", "Docker", "Kubernetes"}
	if !reflect.DeepEqual(p.Skills, want) {
		t.Errorf("skills = %v, want %v", p.Skills, want)
	}
	if p.ExperienceYears == nil || *p.ExperienceYears != 6 {
		t.Errorf("experience = %v", p.ExperienceYears)
	}
	if !reflect.DeepEqual(p.Titles, []string{"Backend Engineer", "Tech Lead"}) {
		t.Errorf("titles = %v", p.Titles)
	}
	if p.Summary != "Backend engineer with platform focus." {
		t.Errorf("summary = %q", p.Summary)
	}
}

func TestParseProfileMarkdownPlainLabels(t *testing.T) {
	text := "Skills: Python, SQL\n5 years of experience\nTitle: Data Analyst"
	p := ParseProfile(text)
	if len(p.Skills) != 2 || p.Skills[0] != "Python" {
		t.Errorf("skills = %v", p.Skills)
	}
	if p.ExperienceYears == nil || *p.ExperienceYears != 5 {
		t.Errorf("experience = %v", p.ExperienceYears)
	}
	if len(p.Titles) != 1 || p.Titles[0] != "Data Analyst" {
		t.Errorf("titles = %v", p.Titles)
	}
}
