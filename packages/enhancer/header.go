package enhancer

import (
	"fmt"
	"strings"
)

// Sentinel marks a file as already processed.
const Sentinel = "AGENT_ENHANCED"

// NoTestFile is reported when no conventional test file exists for a source file.
const NoTestFile = "No corresponding test file found"

// RenderSourceHeader builds the AGENT_* comment block for a source file.
func RenderSourceHeader(a FileAnalysis, testFile, date string) string {
	lines := []string{
		Sentinel + ": Comprehensive AI context auto-generated",
		"AGENT_MODULE: " + a.FileType.Description,
		"AGENT_LAYER: " + a.FileType.Layer,
		fmt.Sprintf("AGENT_COMPLEXITY: %s (%d lines, %d methods)", a.Complexity, a.LineCount, len(a.Methods)),
		"AGENT_DEPENDENCIES: " + joinOr(firstN(a.Dependencies, 5), "None detected"),
		"AGENT_PATTERNS: " + joinOr(PatternDescriptions(a.Patterns), "Standard business logic"),
		"AGENT_CLASSES: " + joinOr(a.Classes, "No classes"),
		"AGENT_PUBLIC_METHODS: " + joinOr(firstN(a.Methods, 5), "No public methods"),
		"AGENT_TEST_COVERAGE: " + orDefault(testFile, "No test file found"),
		fmt.Sprintf("AGENT_RECENT_CHANGES: Enhanced for AI agent context (%s)", date),
		"AGENT_MAINTENANCE_NOTES: Auto-generated AI context - update when major changes occur",
		"AGENT_INTEGRATION_POINTS: " + IntegrationPoints(a.Patterns),
		"AGENT_SECURITY_CONTEXT: " + SecurityRelevance(a.Patterns),
		"AGENT_PERFORMANCE_NOTES: " + PerformanceRelevance(a.Patterns),
	}
	return "// " + strings.Join(lines, "\n// ")
}

// RenderConfigHeader builds the replacement for a config file's opening tag.
func RenderConfigHeader(name, date string) string {
	return fmt.Sprintf(`<?php

// %s: Configuration file with AI context
// AGENT_MODULE: Application configuration for %s
// AGENT_LAYER: Configuration
// AGENT_PURPOSE: System configuration and environment-specific settings
// AGENT_SECURITY_NOTE: Contains sensitive configuration - review before committing
// AGENT_RECENT_CHANGES: Enhanced for AI agent context (%s)

`, Sentinel, name, date)
}

// PatternDescriptions lists human-readable names of the detected patterns.
func PatternDescriptions(p Patterns) []string {
	var out []string
	if p.Database {
		out = append(out, "Database interactions")
	}
	if p.API {
		out = append(out, "API endpoint handling")
	}
	if p.Shopify {
		out = append(out, "Shopify integration")
	}
	if p.Geolocation {
		out = append(out, "Geolocation services")
	}
	return out
}

// IntegrationPoints names the external systems a file talks to.
func IntegrationPoints(p Patterns) string {
	var points []string
	if p.Shopify {
		points = append(points, "Shopify API")
	}
	if p.Geolocation {
		points = append(points, "Geolocation services")
	}
	if p.Database {
		points = append(points, "Database layer")
	}
	if p.API {
		points = append(points, "REST API endpoints")
	}
	return joinOr(points, "Internal business logic")
}

// SecurityRelevance rates how security-sensitive a file is.
func SecurityRelevance(p Patterns) string {
	switch {
	case p.API:
		return "High - API endpoints require authentication and input validation"
	case p.Database:
		return "Medium - Database operations require SQL injection protection"
	case p.Shopify:
		return "High - Shopify integration requires webhook validation and secure tokens"
	default:
		return "Standard - Follow general security practices"
	}
}

// PerformanceRelevance gives the performance note for a file.
func PerformanceRelevance(p Patterns) string {
	switch {
	case p.Database:
		return "Database queries should be optimized and use appropriate indexing"
	case p.API:
		return "API responses should be cached when appropriate"
	case p.Geolocation:
		return "Geolocation lookups should be cached to avoid service limits"
	default:
		return "Standard performance considerations apply"
	}
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	return values
}

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ", ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
