package issues

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// Labels that hold an issue back no matter what else it carries.
var blockingLabels = []string{"needs discussion", "blocked", "waiting for input"}

// Labels that mark an issue as actionable.
var readyLabels = []string{"good first issue", "help wanted", "bug", "ai-agent-ready"}

const (
	baseScore = 50
	maxScore  = 100

	// body lengths are counted in characters, not bytes
	readyBodyLength    = 100
	detailedBodyLength = 200
)

var labelBonuses = []struct {
	label string
	bonus int
}{
	{"good first issue", 20},
	{"ai-agent-ready", 25},
	{"bug", 15},
	{"enhancement", 10},
}

// IsReady reports whether an issue can be handled without further human input.
func IsReady(issue Issue) bool {
	labels := normalizeLabels(issue.Labels)

	if hasAny(labels, blockingLabels) {
		return false
	}
	if hasAny(labels, readyLabels) {
		return true
	}
	return bodyLength(issue) > readyBodyLength
}

// ExtractPriority scans labels for priority substrings. Medium when nothing matches.
func ExtractPriority(labels []string) Priority {
	labels = normalizeLabels(labels)

	switch {
	case containsSubstring(labels, "high priority") || containsSubstring(labels, "critical"):
		return PriorityHigh
	case containsSubstring(labels, "medium priority"):
		return PriorityMedium
	case containsSubstring(labels, "low priority"):
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// ExtractComplexity looks for the exact complexity-* labels.
func ExtractComplexity(labels []string) Complexity {
	labels = normalizeLabels(labels)

	switch {
	case slices.Contains(labels, "complexity-low"):
		return ComplexityLow
	case slices.Contains(labels, "complexity-medium"):
		return ComplexityMedium
	case slices.Contains(labels, "complexity-high"):
		return ComplexityHigh
	default:
		return ComplexityUnknown
	}
}

// ReadinessScore computes the 0..100 heuristic score. Lower complexity,
// a detailed body and no assignee all push the score up.
func ReadinessScore(issue Issue) int {
	labels := normalizeLabels(issue.Labels)
	score := baseScore

	for _, b := range labelBonuses {
		if slices.Contains(labels, b.label) {
			score += b.bonus
		}
	}

	if slices.Contains(labels, "complexity-low") {
		score += 20
	} else if slices.Contains(labels, "complexity-medium") {
		score += 10
	}

	if bodyLength(issue) > detailedBodyLength {
		score += 15
	}

	if issue.Assignee == "" {
		score += 10
	}

	return min(max(score, 0), maxScore)
}

// Classify returns the task for a ready issue. ok is false when the issue is not ready.
func Classify(issue Issue) (task Task, ok bool) {
	if !IsReady(issue) {
		return Task{}, false
	}

	task = Task{
		IssueNumber:    issue.Number,
		Title:          issue.Title,
		Labels:         normalizeLabels(issue.Labels),
		Priority:       ExtractPriority(issue.Labels),
		Complexity:     ExtractComplexity(issue.Labels),
		ReadinessScore: ReadinessScore(issue),
		URL:            issue.URL,
	}
	if issue.Assignee != "" {
		assignee := issue.Assignee
		task.Assignee = &assignee
	}
	return task, true
}

func hasAny(labels, wanted []string) bool {
	for _, w := range wanted {
		if slices.Contains(labels, w) {
			return true
		}
	}
	return false
}

func containsSubstring(labels []string, sub string) bool {
	for _, label := range labels {
		if strings.Contains(label, sub) {
			return true
		}
	}
	return false
}

func bodyLength(issue Issue) int {
	return utf8.RuneCountInString(issue.Body)
}
