package issues

import "fmt"

// MockAnalysis is the fixed dataset returned when the tracker cannot be reached.
func MockAnalysis(repository, timestamp string) *Analysis {
	return &Analysis{
		Timestamp:   timestamp,
		Repository:  repository,
		Source:      SourceMock,
		TotalIssues: 2,
		ReadyTasks: []Task{
			{
				IssueNumber:    154,
				Title:          "Flipping Securify endpoints",
				Labels:         []string{"bug", "high priority", "internal"},
				Priority:       PriorityHigh,
				Complexity:     ComplexityMedium,
				ReadinessScore: 85,
				URL:            fmt.Sprintf("https://github.com/%s/issues/154", repository),
			},
			{
				IssueNumber:    151,
				Title:          "Fake data from demo store for first time install over the dashboard",
				Labels:         []string{"enhancement", "high priority"},
				Priority:       PriorityHigh,
				Complexity:     ComplexityLow,
				ReadinessScore: 90,
				URL:            fmt.Sprintf("https://github.com/%s/issues/151", repository),
			},
		},
		PriorityDistribution:   PriorityDistribution{High: 2},
		ComplexityDistribution: ComplexityDistribution{Low: 1, Medium: 1},
	}
}
