// Package issues ranks open tracker issues by how ready they are for an
// autonomous agent to pick up without further human input.
package issues

import (
	"strings"

	"github.com/google/go-github/github"
)

// Priority is derived from "... priority" and "critical" labels.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Complexity is derived from the complexity-* labels.
type Complexity string

const (
	ComplexityLow     Complexity = "low"
	ComplexityMedium  Complexity = "medium"
	ComplexityHigh    Complexity = "high"
	ComplexityUnknown Complexity = "unknown"
)

// Source values recorded on an Analysis.
const (
	SourceGitHub = "github"
	SourceMock   = "mock"
)

// Issue is the raw record the classifier works on.
type Issue struct {
	Number   int
	Title    string
	Body     string
	Labels   []string
	Assignee string // empty when unassigned
	URL      string
}

// Task is a ready issue with its derived attributes.
type Task struct {
	IssueNumber    int        `json:"issue_number"`
	Title          string     `json:"title"`
	Labels         []string   `json:"labels"`
	Priority       Priority   `json:"priority"`
	Complexity     Complexity `json:"complexity"`
	ReadinessScore int        `json:"readiness_score"`
	Assignee       *string    `json:"assignee"`
	URL            string     `json:"url"`
}

// PriorityDistribution counts analyzed issues per priority.
type PriorityDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ComplexityDistribution counts analyzed issues per complexity.
type ComplexityDistribution struct {
	Low     int `json:"low"`
	Medium  int `json:"medium"`
	High    int `json:"high"`
	Unknown int `json:"unknown"`
}

// Analysis is the JSON document emitted for one run.
type Analysis struct {
	Timestamp              string                 `json:"timestamp"`
	Repository             string                 `json:"repository"`
	Source                 string                 `json:"source"`
	TotalIssues            int                    `json:"total_issues"`
	ReadyTasks             []Task                 `json:"ai_ready_tasks"`
	PriorityDistribution   PriorityDistribution   `json:"priority_distribution"`
	ComplexityDistribution ComplexityDistribution `json:"complexity_distribution"`
}

func (d *PriorityDistribution) add(p Priority) {
	switch p {
	case PriorityHigh:
		d.High++
	case PriorityLow:
		d.Low++
	default:
		d.Medium++
	}
}

func (d *ComplexityDistribution) add(c Complexity) {
	switch c {
	case ComplexityLow:
		d.Low++
	case ComplexityMedium:
		d.Medium++
	case ComplexityHigh:
		d.High++
	default:
		d.Unknown++
	}
}

// FromGitHub converts an API issue into the classifier's record.
func FromGitHub(gi *github.Issue) Issue {
	labels := make([]string, 0, len(gi.Labels))
	for _, label := range gi.Labels {
		labels = append(labels, label.GetName())
	}

	issue := Issue{
		Number: gi.GetNumber(),
		Title:  gi.GetTitle(),
		Body:   gi.GetBody(),
		Labels: normalizeLabels(labels),
		URL:    gi.GetHTMLURL(),
	}
	if gi.Assignee != nil {
		issue.Assignee = gi.Assignee.GetLogin()
	}
	return issue
}

func normalizeLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, label := range labels {
		out[i] = strings.ToLower(label)
	}
	return out
}
