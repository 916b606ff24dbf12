package config

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeTourNotFound      = "TOUR_NOT_FOUND"
	ErrCodeTourParse         = "TOUR_PARSE"
	ErrCodeTourInvalid       = "TOUR_INVALID"
	ErrCodeScenarioNotFound  = "SCENARIO_NOT_FOUND"
	ErrCodeScenarioInvalid   = "SCENARIO_INVALID"
	ErrCodePageParse         = "PAGE_PARSE"
	ErrCodeFormatUnsupported = "FORMAT_UNSUPPORTED"
	ErrCodeBrowser           = "BROWSER_UNAVAILABLE"
)

// UserError represents a user-friendly error with actionable suggestions.
type UserError struct {
	Code       string // Error code for categorization (e.g., "TOUR_NOT_FOUND")
	Message    string // User-friendly error message
	Context    string // File path, field or line context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	if e.Context == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (at %s)", e.Message, e.Context)
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// NewUserError creates a new UserError with the given code and message.
func NewUserError(code, message string) *UserError {
	return &UserError{
		Code:    code,
		Message: message,
	}
}

// WithContext returns a copy of e with context set.
func (e *UserError) WithContext(ctx string) *UserError {
	c := *e
	c.Context = ctx
	return &c
}

// WithSuggestion returns a copy of e with suggestion set.
func (e *UserError) WithSuggestion(suggestion string) *UserError {
	c := *e
	c.Suggestion = suggestion
	return &c
}

// WithUnderlying returns a copy of e wrapping err.
func (e *UserError) WithUnderlying(err error) *UserError {
	c := *e
	c.Underlying = err
	return &c
}

// ErrorList accumulates multiple errors for comprehensive reporting.
type ErrorList struct {
	errors []*UserError
}

// NewErrorList creates an empty ErrorList.
func NewErrorList() *ErrorList {
	return &ErrorList{
		errors: make([]*UserError, 0),
	}
}

// Add adds an error to the list.
func (l *ErrorList) Add(err *UserError) {
	if err != nil {
		l.errors = append(l.errors, err)
	}
}

// AddInvalid adds a validation error with the given code for field.
func (l *ErrorList) AddInvalid(code, field, message, suggestion string) {
	l.Add(&UserError{
		Code:       code,
		Message:    fmt.Sprintf("%s: %s", field, message),
		Context:    field,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if there are any errors.
func (l *ErrorList) HasErrors() bool {
	return len(l.errors) > 0
}

// Len returns the number of errors.
func (l *ErrorList) Len() int {
	return len(l.errors)
}

// Errors returns the list of errors.
func (l *ErrorList) Errors() []*UserError {
	result := make([]*UserError, len(l.errors))
	copy(result, l.errors)
	return result
}

// Error implements the error interface for ErrorList.
func (l *ErrorList) Error() string {
	switch len(l.errors) {
	case 0:
		return ""
	case 1:
		return l.errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d errors occurred:\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error {
	out := make([]error, len(l.errors))
	for i, err := range l.errors {
		out[i] = err
	}
	return out
}

// Format returns a detailed formatted output of all errors.
func (l *ErrorList) Format() string {
	if len(l.errors) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d error(s):\n", len(l.errors))
	for i, err := range l.errors {
		fmt.Fprintf(&b, "\n--- Error %d ---\n", i+1)
		b.WriteString(err.Format())
		b.WriteString("\n")
	}
	return b.String()
}

// AsError returns the ErrorList as an error, or nil if empty.
func (l *ErrorList) AsError() error {
	if !l.HasErrors() {
		return nil
	}
	return l
}

// NewTourNotFoundError creates an error for a missing tour file.
func NewTourNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeTourNotFound,
		Message:    fmt.Sprintf("tour file not found: %s", path),
		Context:    path,
		Suggestion: "Check the file path, or pass the tour with --tour.",
	}
}

// NewScenarioNotFoundError creates an error for a missing scenario file.
func NewScenarioNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeScenarioNotFound,
		Message:    fmt.Sprintf("scenario file not found: %s", path),
		Context:    path,
		Suggestion: "Check the file path of the scenario argument.",
	}
}

// NewFormatUnsupportedError creates an error for an unknown file extension.
func NewFormatUnsupportedError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeFormatUnsupported,
		Message:    fmt.Sprintf("unsupported tour format %q", extOf(path)),
		Context:    path,
		Suggestion: "Use a .yaml, .yml, .toml or .ini tour file.",
	}
}

// NewPageParseError creates an error for an HTML page that cannot be loaded.
func NewPageParseError(path string, err error) *UserError {
	return &UserError{
		Code:       ErrCodePageParse,
		Message:    "failed to load page",
		Context:    path,
		Suggestion: "Check the page's data-width and data-height attributes are numbers.",
		Underlying: err,
	}
}

// NewBrowserError creates an error for a browser page that cannot be opened.
func NewBrowserError(url string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeBrowser,
		Message:    "failed to open the page in a browser",
		Context:    url,
		Suggestion: "Install Chrome or Chromium, or pass its executable with --browser.",
		Underlying: err,
	}
}

// NewTourParseError translates decoder errors into user-friendly messages.
func NewTourParseError(path string, format Format, err error) *UserError {
	if format == FormatYAML {
		return NewYAMLParseError(path, err)
	}

	suggestion := "Check the TOML syntax: steps are [[steps]] tables and hints are [[steps.hints]] tables."
	if format == FormatINI {
		suggestion = "Check the INI syntax: one [step N] section per step with key = value lines."
	}
	return &UserError{
		Code:       ErrCodeTourParse,
		Message:    fmt.Sprintf("invalid %s syntax", format),
		Context:    path,
		Suggestion: suggestion,
		Underlying: err,
	}
}

// NewYAMLParseError translates technical YAML errors into user-friendly messages.
func NewYAMLParseError(path string, err error) *UserError {
	errStr := err.Error()
	var message, suggestion string

	switch {
	case strings.Contains(errStr, "cannot unmarshal !!map into []"):
		message = "expected a list but found an object"
		suggestion = `Steps and hints are lists.

Correct format:
  steps:
    - element: "#signup"
      hints:
        - element: ".help"
          hint: Need help?`

	case strings.Contains(errStr, "cannot unmarshal !!seq into"):
		message = "expected an object but found a list"
		suggestion = "Check that you're using 'key: value' format instead of '- item' list format."

	case strings.Contains(errStr, "invalid duration"):
		message = "invalid duration"
		suggestion = "Durations are milliseconds (250) or Go durations (250ms, 1s)."

	case strings.Contains(errStr, "cannot unmarshal !!str into"):
		message = "unexpected string value"
		suggestion = "Booleans are true/false; check nested values are indented correctly."

	case strings.Contains(errStr, "did not find expected key"):
		message = "missing required field or incorrect indentation"
		suggestion = "YAML is sensitive to indentation. Use 2 spaces (not tabs) for each level."

	case strings.Contains(errStr, "found character that cannot start"):
		message = "invalid character in YAML"
		suggestion = `Quote selectors: element: "#signup" (an unquoted # starts a comment).`

	default:
		message = "invalid YAML syntax"
		suggestion = "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted selectors."
	}

	context := path
	if _, after, ok := strings.Cut(errStr, "line "); ok {
		line, _, _ := strings.Cut(after, ":")
		context = fmt.Sprintf("%s (line %s)", path, line)
	}

	return &UserError{
		Code:       ErrCodeTourParse,
		Message:    message,
		Context:    context,
		Suggestion: suggestion,
		Underlying: err,
	}
}

// IsUserError checks if an error is a UserError with a specific code.
func IsUserError(err error, code string) bool {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code == code
	}
	return false
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}
