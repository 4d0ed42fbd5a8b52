package errors

import (
	"errors"
	"fmt"
)

// Category classifies pipeline failures
type Category string

const (
	CategoryInvalidInput      Category = "invalid_input"
	CategoryDependencyMissing Category = "dependency_missing"
	CategoryScrapeFailed      Category = "scrape_failed"
	CategoryDownloadFailed    Category = "download_failed"
	CategoryToolMissing       Category = "tool_missing"
	CategoryUnknown           Category = "unknown"
)

// Reason sub-classifies a failed download based on the tool's stderr
type Reason string

const (
	ReasonUnavailable    Reason = "unavailable"
	ReasonCancelled      Reason = "cancelled"
	ReasonNetworkTimeout Reason = "network_timeout"
	ReasonUnclassified   Reason = "unclassified"
)

// Error is a categorized pipeline error
type Error struct {
	Category Category
	Reason   Reason
	Message  string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Reason != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Reason)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewInvalidInput reports an account or date that cannot form a valid request
func NewInvalidInput(message string) *Error {
	return &Error{Category: CategoryInvalidInput, Message: message}
}

// NewDependencyMissing reports a required external tool absent before any work started
func NewDependencyMissing(tool string) *Error {
	return &Error{Category: CategoryDependencyMissing, Message: fmt.Sprintf("required tool %q not found on PATH", tool)}
}

// NewScrapeFailed reports a page scrape that did not produce markup
func NewScrapeFailed(message string, cause error) *Error {
	return &Error{Category: CategoryScrapeFailed, Message: message, Err: cause}
}

// NewDownloadFailed reports a single clip download failure with its classified reason
func NewDownloadFailed(reason Reason, message string, cause error) *Error {
	return &Error{Category: CategoryDownloadFailed, Reason: reason, Message: message, Err: cause}
}

// NewToolMissing reports the download tool vanishing at spawn time
func NewToolMissing(tool string, cause error) *Error {
	return &Error{Category: CategoryToolMissing, Message: fmt.Sprintf("download tool %q not found", tool), Err: cause}
}

// CategoryOf extracts the category from any error chain
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryUnknown
}

// ReasonOf extracts the download failure reason, if any
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ""
}

// IsFatal reports whether an error must halt the whole run rather than
// a single account or clip
func IsFatal(err error) bool {
	switch CategoryOf(err) {
	case CategoryDependencyMissing, CategoryToolMissing:
		return true
	default:
		return false
	}
}
