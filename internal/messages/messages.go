// Package messages builds and classifies the Info/Success/Error message
// strings emitted by batch operations. Severity is carried by a fixed
// string prefix so messages survive round trips through plain text.
package messages

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
)

// Severity of a message, recovered from its prefix
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
)

const (
	infoPrefix    = "Info: "
	successPrefix = "Success: "
	errorPrefix   = "Error: "
)

// ClassUpToDate reports that nothing in a class of entities needed a change.
func ClassUpToDate(label string) string {
	return fmt.Sprintf("%s%s, everything up-to-date", infoPrefix, label)
}

// ClassNothingNew reports that a class-level import had nothing to add.
func ClassNothingNew(label string) string {
	return fmt.Sprintf("%s%s, nothing new", infoPrefix, label)
}

// ClassError reports a class-level failure.
func ClassError(label string, err error) string {
	return fmt.Sprintf("%s%s, %v", errorPrefix, label, err)
}

// UpToDate reports that a single entity was already in the requested state.
func UpToDate(label string, entity fmt.Stringer, detail string) string {
	if detail == "" {
		detail = "already up-to-date"
	}
	return fmt.Sprintf("%s%s %s, %s", infoPrefix, label, entity, detail)
}

// Error reports a per-entity failure.
func Error(label string, entity fmt.Stringer, err error) string {
	return fmt.Sprintf("%s%s %s, %v", errorPrefix, label, entity, err)
}

// CreateSuccess reports a created entity.
func CreateSuccess(label string, entity fmt.Stringer) string {
	return fmt.Sprintf("%s%s %s created", successPrefix, label, entity)
}

// UpdateSuccess reports an updated entity with a free-form detail.
func UpdateSuccess(label string, entity fmt.Stringer, detail string) string {
	msg := fmt.Sprintf("%s%s %s updated", successPrefix, label, entity)
	if detail != "" {
		msg += ", " + detail
	}
	return msg
}

// UpdateDiff reports an updated entity with a field-by-field diff of the
// previous and new values. Fields are compared by key; unchanged fields are
// omitted. When nothing changed, the up-to-date message is returned instead.
func UpdateDiff(label string, entity fmt.Stringer, previous, new map[string]any) string {
	keys := make([]string, 0, len(new))
	for key := range new {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var changes strings.Builder
	for _, key := range keys {
		value := new[key]
		if prev, ok := previous[key]; !ok || prev != value {
			fmt.Fprintf(&changes, ", %s: %v -> %v", key, previous[key], value)
		}
	}
	if changes.Len() == 0 {
		return UpToDate(label, entity, "")
	}
	return fmt.Sprintf("%s%s %s updated%s", successPrefix, label, entity, changes.String())
}

// SeverityOf classifies a message by its prefix. Anything without a known
// prefix is treated as an error.
func SeverityOf(msg string) Severity {
	switch {
	case strings.HasPrefix(msg, infoPrefix):
		return SeverityInfo
	case strings.HasPrefix(msg, successPrefix):
		return SeveritySuccess
	default:
		return SeverityError
	}
}

// IsInfo reports whether msg carries the Info prefix.
func IsInfo(msg string) bool {
	return SeverityOf(msg) == SeverityInfo
}

// Filter drops Info messages when includeInfo is false. When filtering
// leaves nothing, a single class up-to-date message is substituted so the
// caller always has something to show.
func Filter(msgs []string, includeInfo bool, label string) []string {
	if includeInfo {
		return msgs
	}
	var kept []string
	for _, msg := range msgs {
		if !IsInfo(msg) {
			kept = append(kept, msg)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, ClassUpToDate(label))
	}
	return kept
}

// Display prints messages to the console with severity coloring.
func Display(msgs []string) {
	for _, msg := range msgs {
		switch SeverityOf(msg) {
		case SeverityInfo:
			color.Yellow("  %s", msg)
		case SeveritySuccess:
			color.Green("  %s", msg)
		default:
			color.Red("  %s", msg)
		}
	}
}
