package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ConfigError describes a configuration value that is missing or malformed.
// It is reported at startup and never at request time.
type ConfigError struct {
	Key     string
	Problem string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Key, e.Problem)
}

// Problems reported by Diagnose
const (
	ProblemMissing          = "missing or empty"
	ProblemWhitespace       = "has leading or trailing whitespace"
	ProblemQuotes           = "contains quote characters"
	ProblemTrailingEquals   = "ends with '=' (copied with padding?)"
	ProblemMissingDependent = "required when %s is set"
)

// EnvCheck declares how a single environment variable is diagnosed.
type EnvCheck struct {
	Key      string
	Required bool
	// RequiredWith makes the key required as soon as the named key is set.
	RequiredWith string
	// APIKey values must not end with '='.
	APIKey bool
	// Secret values are masked in reports.
	Secret bool
}

// DiagnosedKeys is the fixed set of configuration values checked at startup.
var DiagnosedKeys = []EnvCheck{
	{Key: "APP_URL", Required: true},
	{Key: "SESSION_SECRET", Required: true, Secret: true},
	{Key: "DB_PATH"},
	{Key: "TURSO_DATABASE_URL"},
	{Key: "TURSO_AUTH_TOKEN", RequiredWith: "TURSO_DATABASE_URL", APIKey: true, Secret: true},
	{Key: "RESEND_API_KEY", APIKey: true, Secret: true},
	{Key: "EMAIL_FROM"},
	{Key: "ADMIN_NOTIFY_EMAIL"},
	{Key: "TURNSTILE_SITE_KEY"},
	{Key: "TURNSTILE_SECRET_KEY", RequiredWith: "TURNSTILE_SITE_KEY", APIKey: true, Secret: true},
	{Key: "R2_ACCOUNT_ID"},
	{Key: "R2_ACCESS_KEY_ID", RequiredWith: "R2_ACCOUNT_ID", Secret: true},
	{Key: "R2_SECRET_ACCESS_KEY", RequiredWith: "R2_ACCOUNT_ID", Secret: true},
	{Key: "R2_BUCKET_NAME", RequiredWith: "R2_ACCOUNT_ID"},
}

// EnvReport is the diagnostic row for one key.
type EnvReport struct {
	Key      string
	Present  bool
	Length   int
	Preview  string
	Problems []string
}

// OK reports whether the key passed every check.
func (r EnvReport) OK() bool {
	return len(r.Problems) == 0
}

// Diagnostics is the result of checking DiagnosedKeys.
type Diagnostics struct {
	Reports []EnvReport
	Errors  []*ConfigError
}

// Err joins all configuration errors, or returns nil.
func (d Diagnostics) Err() error {
	if len(d.Errors) == 0 {
		return nil
	}
	errs := make([]error, 0, len(d.Errors))
	for _, e := range d.Errors {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// DiagnoseEnv runs Diagnose against the process environment.
func DiagnoseEnv() Diagnostics {
	return Diagnose(os.LookupEnv)
}

// Diagnose checks every key in DiagnosedKeys using lookup.
func Diagnose(lookup LookupFunc) Diagnostics {
	var d Diagnostics

	isSet := func(key string) bool {
		v, ok := lookup(key)
		return ok && v != ""
	}

	for _, check := range DiagnosedKeys {
		value, ok := lookup(check.Key)
		present := ok && value != ""

		report := EnvReport{
			Key:     check.Key,
			Present: present,
			Length:  len(value),
			Preview: preview(value, check.Secret),
		}

		required := check.Required || (check.RequiredWith != "" && isSet(check.RequiredWith))
		if !present {
			if required {
				problem := ProblemMissing
				if !check.Required {
					problem = fmt.Sprintf(ProblemMissingDependent, check.RequiredWith)
				}
				report.Problems = append(report.Problems, problem)
			}
		} else {
			report.Problems = append(report.Problems, valueProblems(value, check.APIKey)...)
		}

		for _, p := range report.Problems {
			d.Errors = append(d.Errors, &ConfigError{Key: check.Key, Problem: p})
		}
		d.Reports = append(d.Reports, report)
	}

	return d
}

func valueProblems(value string, apiKey bool) []string {
	var problems []string
	if strings.TrimSpace(value) != value {
		problems = append(problems, ProblemWhitespace)
	}
	if strings.ContainsAny(value, `"'`) {
		problems = append(problems, ProblemQuotes)
	}
	if apiKey && strings.HasSuffix(value, "=") {
		problems = append(problems, ProblemTrailingEquals)
	}
	return problems
}

// preview never returns a full secret
func preview(value string, secret bool) string {
	if value == "" {
		return "MISSING"
	}
	if !secret {
		return value
	}
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:4] + "..." + value[len(value)-2:]
}
