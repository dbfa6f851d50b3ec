package enhancer

import (
	"regexp"
	"strings"
)

// Complexity is a coarse size/branching estimate of a source file.
type Complexity string

const (
	ComplexityLow    Complexity = "Low"
	ComplexityMedium Complexity = "Medium"
	ComplexityHigh   Complexity = "High"
)

// FileType is the architectural layer a file is assumed to belong to.
type FileType struct {
	Layer       string `json:"layer"`
	Description string `json:"description"`
}

// Patterns flags the functional areas a file appears to touch.
type Patterns struct {
	Database    bool `json:"database"`
	API         bool `json:"api"`
	Shopify     bool `json:"shopify"`
	Geolocation bool `json:"geolocation"`
}

// FileAnalysis is what the header generator knows about a file. Everything in
// it comes from regex matches on raw text, so it is a heuristic, not a parse.
type FileAnalysis struct {
	FileType     FileType   `json:"file_type"`
	Classes      []string   `json:"classes"`
	Methods      []string   `json:"methods"`
	Dependencies []string   `json:"dependencies"`
	Patterns     Patterns   `json:"patterns"`
	Complexity   Complexity `json:"complexity"`
	LineCount    int        `json:"line_count"`
}

var (
	classRe      = regexp.MustCompile(`class\s+(\w+)`)
	methodRe     = regexp.MustCompile(`public\s+function\s+(\w+)`)
	dependencyRe = regexp.MustCompile(`use\s+([\w\\]+)`)

	databaseRe    = regexp.MustCompile(`(Model|DB::|Eloquent)`)
	apiRe         = regexp.MustCompile(`(Request|Response|Controller)`)
	shopifyRe     = regexp.MustCompile(`(?i)(Shopify|Shop::)`)
	geolocationRe = regexp.MustCompile(`(?i)(geoip|country|location|ip)`)

	functionRe = regexp.MustCompile(`function\s+\w+`)
	ifRe       = regexp.MustCompile(`\bif\s*\(`)
	loopRe     = regexp.MustCompile(`\b(for|while|foreach)\s*\(`)
	tryRe      = regexp.MustCompile(`\btry\s*\{`)
)

// layerRules are checked in order against the lower-cased path; first hit wins.
var layerRules = []struct {
	needle string
	FileType
}{
	{"controller", FileType{"Controller", "HTTP request handling and business logic coordination"}},
	{"model", FileType{"Model", "Data model and database interaction"}},
	{"helper", FileType{"Helper", "Utility functions and business logic support"}},
	{"service", FileType{"Service", "Business service and external API integration"}},
	{"job", FileType{"Job", "Background job processing and queued tasks"}},
	{"middleware", FileType{"Middleware", "Request/response filtering and processing"}},
	{"provider", FileType{"Provider", "Service provider and dependency injection"}},
	{"command", FileType{"Command", "Artisan console command"}},
}

var utilityType = FileType{"Utility", "General utility and support functions"}

// AnalyzeFile extracts the structural summary of a PHP file.
func AnalyzeFile(content, path string) FileAnalysis {
	return FileAnalysis{
		FileType:     DetermineFileType(path),
		Classes:      unique(submatches(classRe, content)),
		Methods:      submatches(methodRe, content),
		Dependencies: submatches(dependencyRe, content),
		Patterns: Patterns{
			Database:    databaseRe.MatchString(content),
			API:         apiRe.MatchString(content),
			Shopify:     shopifyRe.MatchString(content),
			Geolocation: geolocationRe.MatchString(content),
		},
		Complexity: EstimateComplexity(content),
		LineCount:  CountLines(content),
	}
}

// DetermineFileType maps a path to its layer by substring.
func DetermineFileType(path string) FileType {
	lower := strings.ToLower(path)
	for _, rule := range layerRules {
		if strings.Contains(lower, rule.needle) {
			return rule.FileType
		}
	}
	return utilityType
}

// EstimateComplexity weighs functions, branches, loops and try blocks against file length.
func EstimateComplexity(content string) Complexity {
	lines := CountLines(content)

	score := len(functionRe.FindAllStringIndex(content, -1))*2 +
		len(ifRe.FindAllStringIndex(content, -1)) +
		len(loopRe.FindAllStringIndex(content, -1))*2 +
		len(tryRe.FindAllStringIndex(content, -1))*3

	switch {
	case lines < 50 && score < 10:
		return ComplexityLow
	case lines < 200 && score < 30:
		return ComplexityMedium
	default:
		return ComplexityHigh
	}
}

// CountLines counts text lines the way Python's str.splitlines does: \r\n,
// \n, \r, \v, \f, \x1c-\x1e, U+0085, U+2028 and U+2029 all end a line, and a
// trailing break does not start a new one.
func CountLines(content string) int {
	n := 0
	last := rune(0)
	for i, r := range content {
		last = r
		if r == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			continue
		}
		if isLineBreak(r) {
			n++
		}
	}
	if content != "" && !isLineBreak(last) {
		n++
	}
	return n
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
		return true
	}
	return false
}

func submatches(re *regexp.Regexp, content string) []string {
	matches := re.FindAllStringSubmatch(content, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
