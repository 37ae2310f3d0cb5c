package extract

// Kind tags the classified payload of a completed pipeline run.
type Kind string

const (
	KindText         Kind = "text"
	KindProfile      Kind = "profile"
	KindJobSelection Kind = "job_selection"
	KindJobs         Kind = "jobs"
)

// Classification is the shape-agnostic result handed to persistence and to
// the done event. Exactly one of Profile/Jobs is populated for non-text
// kinds; Details only accompanies KindJobs.
type Classification struct {
	Kind    Kind        `json:"kind"`
	Profile *Profile    `json:"profile,omitempty"`
	Jobs    []Job       `json:"jobs,omitempty"`
	Details []JobDetail `json:"details,omitempty"`
}

// Classify inspects final response text and decides what structured content
// it carries. detailPhase marks the enrichment step, where listings come
// back together with scraped details.
func Classify(text string, detailPhase bool) Classification {
	jobs := DedupeJobs(ParseJobs(text))
	if len(jobs) > 0 {
		if detailPhase {
			return Classification{
				Kind:    KindJobs,
				Jobs:    jobs,
				Details: ParseJobDetails(text),
			}
		}
		return Classification{Kind: KindJobSelection, Jobs: jobs}
	}

	if profile := ParseProfile(text); !profile.IsEmpty() {
		return Classification{Kind: KindProfile, Profile: &profile}
	}

	return Classification{Kind: KindText}
}
