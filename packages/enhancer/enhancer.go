// Package enhancer injects AGENT_* context headers into PHP source and
// configuration files.
package enhancer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"devflow-context/packages/config"
)

var (
	sourceTagRe = regexp.MustCompile(`(?m)^(<\?php\s*)`)
	configTagRe = regexp.MustCompile(`(?m)^<\?php\s*`)
)

// testFileCandidates are tried in order, relative to the workspace root.
var testFileCandidates = []string{
	"tests/Feature/%sTest.php",
	"tests/Unit/%sTest.php",
	"tests/Feature/Http/Controllers/%sTest.php",
}

// Kind distinguishes the two header styles.
type Kind int

const (
	KindSource Kind = iota
	KindConfig
)

// Outcome reports what happened to a single file.
type Outcome int

const (
	OutcomeEnhanced Outcome = iota
	OutcomeAlreadyEnhanced
	OutcomeNoOpeningTag
)

// FileRecord pairs a workspace-relative path with its analysis.
type FileRecord struct {
	Path     string
	Analysis FileAnalysis
}

// Failure is a file that could not be processed.
type Failure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Result is everything one enhancement pass produced.
type Result struct {
	Enhanced []string
	Analyses []FileRecord
	Skipped  []string
	Failed   []Failure
}

// Merge folds a later pass into r. Each path keeps one entry: a newer
// enhancement or failure replaces earlier records, and a skip never hides a
// path that was enhanced.
func (r *Result) Merge(other *Result) {
	enhanced := pathSet(other.Enhanced)
	failed := make(map[string]bool, len(other.Failed))
	for _, f := range other.Failed {
		failed[f.Path] = true
	}
	settled := func(path string) bool { return enhanced[path] || failed[path] }

	r.Enhanced = slices.DeleteFunc(r.Enhanced, func(p string) bool { return enhanced[p] })
	r.Analyses = slices.DeleteFunc(r.Analyses, func(rec FileRecord) bool { return enhanced[rec.Path] })
	r.Failed = slices.DeleteFunc(r.Failed, func(f Failure) bool { return settled(f.Path) })
	r.Skipped = slices.DeleteFunc(r.Skipped, settled)

	r.Enhanced = append(r.Enhanced, other.Enhanced...)
	r.Analyses = append(r.Analyses, other.Analyses...)
	r.Failed = append(r.Failed, other.Failed...)

	done := pathSet(r.Enhanced)
	for _, p := range other.Skipped {
		if done[p] || slices.Contains(r.Skipped, p) {
			continue
		}
		r.Skipped = append(r.Skipped, p)
		r.Failed = slices.DeleteFunc(r.Failed, func(f Failure) bool { return f.Path == p })
	}
}

func pathSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

// Enhancer rewrites files under a workspace root.
type Enhancer struct {
	workspace string
	cfg       config.EnhancerConfig
	now       func() time.Time
}

// New creates an Enhancer for the workspace root.
func New(workspace string, cfg config.EnhancerConfig) *Enhancer {
	return &Enhancer{
		workspace: workspace,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for header dates.
func (e *Enhancer) WithClock(now func() time.Time) *Enhancer {
	e.now = now
	return e
}

// Workspace returns the root directory the enhancer works in.
func (e *Enhancer) Workspace() string {
	return e.workspace
}

// Run enhances every matching source file and then every config file.
// Per-file failures are logged and recorded; the pass continues.
func (e *Enhancer) Run(ctx context.Context) (*Result, error) {
	slog.Info("Enhancing codebase with AI context", "workspace", e.workspace)

	sources, err := e.discoverSources()
	if err != nil {
		return nil, fmt.Errorf("failed to list source files: %w", err)
	}
	configs, err := e.discoverConfigs()
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}

	result := &Result{}
	for i, rel := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		slog.Info("Enhancing source file", "index", i+1, "total", len(sources), "path", rel)
		e.process(rel, KindSource, result)
	}
	for _, rel := range configs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		e.process(rel, KindConfig, result)
	}

	slog.Info("Enhancement complete", "enhanced", len(result.Enhanced), "skipped", len(result.Skipped), "failed", len(result.Failed))
	return result, nil
}

// process enhances one file and records the outcome on result.
func (e *Enhancer) process(rel string, kind Kind, result *Result) {
	var (
		outcome  Outcome
		analysis *FileAnalysis
		err      error
	)
	switch kind {
	case KindConfig:
		outcome, err = e.EnhanceConfigFile(rel)
	default:
		outcome, analysis, err = e.EnhanceSourceFile(rel)
	}

	if err != nil {
		slog.Warn("Failed to enhance file", "path", rel, "error", err)
		result.Failed = append(result.Failed, Failure{Path: rel, Error: err.Error()})
		return
	}

	switch outcome {
	case OutcomeEnhanced:
		result.Enhanced = append(result.Enhanced, rel)
		if analysis != nil {
			result.Analyses = append(result.Analyses, FileRecord{Path: rel, Analysis: *analysis})
		}
	case OutcomeNoOpeningTag:
		slog.Info("No opening tag, leaving file untouched", "path", rel)
		result.Skipped = append(result.Skipped, rel)
	default:
		slog.Debug("Already enhanced", "path", rel)
		result.Skipped = append(result.Skipped, rel)
	}
}

// EnhanceSourceFile analyzes a source file and inserts the AGENT_* header after
// its opening tag. rel is relative to the workspace root.
func (e *Enhancer) EnhanceSourceFile(rel string) (Outcome, *FileAnalysis, error) {
	path := filepath.Join(e.workspace, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	content := string(data)

	if strings.Contains(content, Sentinel) {
		return OutcomeAlreadyEnhanced, nil, nil
	}
	if !sourceTagRe.MatchString(content) {
		return OutcomeNoOpeningTag, nil, nil
	}

	analysis := AnalyzeFile(content, filepath.ToSlash(rel))
	header := RenderSourceHeader(analysis, e.findTestFile(rel), e.date())

	enhanced := sourceTagRe.ReplaceAllStringFunc(content, func(tag string) string {
		return tag + "\n" + header + "\n"
	})

	if err := writeInPlace(path, enhanced); err != nil {
		return 0, nil, fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return OutcomeEnhanced, &analysis, nil
}

// EnhanceConfigFile replaces a config file's opening tag with the configuration header.
func (e *Enhancer) EnhanceConfigFile(rel string) (Outcome, error) {
	path := filepath.Join(e.workspace, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", rel, err)
	}
	content := string(data)

	if strings.Contains(content, Sentinel) {
		return OutcomeAlreadyEnhanced, nil
	}
	if !configTagRe.MatchString(content) {
		return OutcomeNoOpeningTag, nil
	}

	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	enhanced := configTagRe.ReplaceAllLiteralString(content, RenderConfigHeader(stem, e.date()))

	if err := writeInPlace(path, enhanced); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", rel, err)
	}
	return OutcomeEnhanced, nil
}

func (e *Enhancer) findTestFile(rel string) string {
	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	for _, pattern := range testFileCandidates {
		candidate := fmt.Sprintf(pattern, stem)
		if _, err := os.Stat(filepath.Join(e.workspace, filepath.FromSlash(candidate))); err == nil {
			return candidate
		}
	}
	return NoTestFile
}

func (e *Enhancer) date() string {
	return e.now().Format("2006-01-02")
}

// discoverSources walks each source dir recursively.
func (e *Enhancer) discoverSources() ([]string, error) {
	var files []string
	for _, dir := range e.cfg.SourceDirs {
		root := filepath.Join(e.workspace, dir)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			slog.Debug("Source directory does not exist", "dir", root)
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && e.shouldIgnoreDirectory(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if matchName(e.cfg.SourcePattern, d.Name()) {
				files = append(files, e.relative(path))
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

// discoverConfigs lists matching files directly inside each config dir.
func (e *Enhancer) discoverConfigs() ([]string, error) {
	var files []string
	for _, dir := range e.cfg.ConfigDirs {
		entries, err := os.ReadDir(filepath.Join(e.workspace, dir))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !matchName(e.cfg.ConfigPattern, entry.Name()) {
				continue
			}
			files = append(files, filepath.ToSlash(filepath.Join(dir, entry.Name())))
		}
	}
	return files, nil
}

// kindOf classifies a workspace-relative path the same way discovery does.
func (e *Enhancer) kindOf(rel string) (Kind, bool) {
	rel = filepath.Clean(rel)
	name := filepath.Base(rel)

	for _, dir := range e.cfg.ConfigDirs {
		if filepath.Dir(rel) == filepath.Clean(dir) && matchName(e.cfg.ConfigPattern, name) {
			return KindConfig, true
		}
	}
	for _, dir := range e.cfg.SourceDirs {
		prefix := filepath.Clean(dir) + string(filepath.Separator)
		if !strings.HasPrefix(rel, prefix) || !matchName(e.cfg.SourcePattern, name) {
			continue
		}
		inner := strings.Split(filepath.Dir(strings.TrimPrefix(rel, prefix)), string(filepath.Separator))
		if slices.ContainsFunc(inner, e.shouldIgnoreDirectory) {
			return 0, false
		}
		return KindSource, true
	}
	return 0, false
}

func (e *Enhancer) shouldIgnoreDirectory(name string) bool {
	if name == "." {
		return false
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	for _, ignored := range e.cfg.IgnoreDirs {
		if strings.EqualFold(name, ignored) {
			return true
		}
	}
	return false
}

func (e *Enhancer) relative(path string) string {
	rel, err := filepath.Rel(e.workspace, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func matchName(pattern, name string) bool {
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

// writeInPlace keeps the file's existing permissions.
func writeInPlace(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), info.Mode().Perm())
}
