package validation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Value is a request field as submitted: its raw text and whether the
// field appeared in the request at all. Absent and empty are different
// things to the rules.
type Value struct {
	Raw     string
	Present bool
}

// String converts an optional decoded JSON field to a Value.
func String(p *string) Value {
	if p == nil {
		return Value{}
	}
	return Value{Raw: *p, Present: true}
}

// Param wraps a path or query parameter, which is always present.
func Param(s string) Value {
	return Value{Raw: s, Present: true}
}

// Check pairs a predicate with the message reported when it fails.
type Check struct {
	Pred    func(Value) bool
	Message string
}

// FieldRules is the ordered list of checks for one named field.
// Optional fields skip their checks when absent.
type FieldRules struct {
	Field    string
	Optional bool
	Checks   []Check
}

// RuleSet is the declarative validation for one operation. Evaluation is
// eager: every failing check contributes its message, nothing
// short-circuits, so the caller sees all problems at once.
type RuleSet []FieldRules

// Validate runs the rule set against the submitted fields. The returned
// map is keyed by field name; an empty map means the input passed.
func (rs RuleSet) Validate(fields map[string]Value) map[string][]string {
	failures := make(map[string][]string)

	for _, fr := range rs {
		v := fields[fr.Field]
		if fr.Optional && !v.Present {
			continue
		}
		for _, check := range fr.Checks {
			if !check.Pred(v) {
				failures[fr.Field] = append(failures[fr.Field], check.Message)
			}
		}
	}

	return failures
}

// Details adapts a failure map for an error response body.
func Details(failures map[string][]string) map[string]any {
	details := make(map[string]any, len(failures))
	for field, messages := range failures {
		details[field] = messages
	}
	return details
}

// Predicates

func Required(v Value) bool {
	return v.Present && strings.TrimSpace(v.Raw) != ""
}

func Email(v Value) bool {
	return emailRegex.MatchString(strings.TrimSpace(v.Raw))
}

func MinLength(n int) func(Value) bool {
	return func(v Value) bool {
		return len(v.Raw) >= n
	}
}

func HasUppercase(v Value) bool {
	for _, r := range v.Raw {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func HasDigit(v Value) bool {
	for _, r := range v.Raw {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func OneOf(allowed ...string) func(Value) bool {
	return func(v Value) bool {
		for _, a := range allowed {
			if v.Raw == a {
				return true
			}
		}
		return false
	}
}

func UUID(v Value) bool {
	_, err := uuid.Parse(v.Raw)
	return err == nil
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
