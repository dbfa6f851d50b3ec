package issues

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/go-github/github"
)

// Analyzer fetches issues from a Source and ranks the ready ones.
type Analyzer struct {
	source     Source
	repository string
	now        func() time.Time
}

// NewAnalyzer creates an analyzer for the owner/name repository.
func NewAnalyzer(source Source, repository string) *Analyzer {
	return &Analyzer{
		source:     source,
		repository: repository,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for the analysis timestamp.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	return a
}

// Analyze returns the ranked analysis. It never fails: any upstream problem
// yields the mock dataset instead.
func (a *Analyzer) Analyze(ctx context.Context) *Analysis {
	timestamp := a.now().Format(time.RFC3339)

	if a.source == nil {
		slog.Warn("No issue source configured - using mock analysis")
		return MockAnalysis(a.repository, timestamp)
	}

	owner, repo, err := SplitRepository(a.repository)
	if err != nil {
		slog.Warn("GitHub analysis failed", "error", err)
		return MockAnalysis(a.repository, timestamp)
	}

	list, err := a.source.ListOpenIssues(ctx, owner, repo)
	if err != nil {
		logSourceError(err)
		return MockAnalysis(a.repository, timestamp)
	}

	analysis := Rank(list)
	analysis.Timestamp = timestamp
	analysis.Repository = a.repository
	analysis.Source = SourceGitHub

	slog.Info("Analyzed issues", "repository", a.repository, "total", analysis.TotalIssues, "ready", len(analysis.ReadyTasks))
	return analysis
}

// Rank classifies every issue, fills the distributions and sorts ready tasks
// by descending readiness score, keeping input order on ties.
func Rank(list []Issue) *Analysis {
	analysis := &Analysis{
		TotalIssues: len(list),
		ReadyTasks:  []Task{},
	}

	for _, issue := range list {
		if task, ok := Classify(issue); ok {
			analysis.ReadyTasks = append(analysis.ReadyTasks, task)
		}
		analysis.PriorityDistribution.add(ExtractPriority(issue.Labels))
		analysis.ComplexityDistribution.add(ExtractComplexity(issue.Labels))
	}

	sort.SliceStable(analysis.ReadyTasks, func(i, j int) bool {
		return analysis.ReadyTasks[i].ReadinessScore > analysis.ReadyTasks[j].ReadinessScore
	})
	return analysis
}

func logSourceError(err error) {
	if errors.Is(err, ErrNoToken) {
		slog.Warn("GITHUB_TOKEN not available - using mock analysis")
		return
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		slog.Warn("GitHub API error - using mock analysis", "status", ghErr.Response.StatusCode)
		return
	}
	slog.Warn("GitHub analysis failed - using mock analysis", "error", err)
}
