// Package validation holds the declarative field rules for user-submitted forms.
package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	// MaxStoryTitleLength is counted in characters, not bytes.
	MaxStoryTitleLength = 100
	// MaxCommentTextLength is counted in characters, not bytes.
	MaxCommentTextLength = 500
)

const (
	MsgTitleRequired   = "Please provide a title."
	MsgTitleTooLong    = "Title must not be more than 100 characters long"
	MsgTextRequired    = "Please provide story text."
	MsgCommentRequired = "Please provide comment text."
	MsgCommentTooLong  = "Comment must not be more than 500 characters long"
)

// Rule checks a single field value. A rule whose check fails contributes Message.
type Rule struct {
	Check   func(value string) bool
	Message string
}

// Field binds a value to the rules it must satisfy.
type Field struct {
	Name  string
	Value string
	Rules []Rule
}

// Required fails on empty or whitespace-only values.
func Required(message string) Rule {
	return Rule{
		Check:   func(v string) bool { return strings.TrimSpace(v) != "" },
		Message: message,
	}
}

// MaxLength fails when the value has more than n characters.
func MaxLength(n int, message string) Rule {
	return Rule{
		Check:   func(v string) bool { return utf8.RuneCountInString(v) <= n },
		Message: message,
	}
}

// Validate runs every rule of every field in order and returns the failed messages.
// It returns nil when all rules pass.
func Validate(fields ...Field) []string {
	var messages []string
	for _, f := range fields {
		for _, r := range f.Rules {
			if !r.Check(f.Value) {
				messages = append(messages, r.Message)
			}
		}
	}
	return messages
}

var (
	storyTitleRules = []Rule{
		Required(MsgTitleRequired),
		MaxLength(MaxStoryTitleLength, MsgTitleTooLong),
	}
	storyTextRules = []Rule{
		Required(MsgTextRequired),
	}
	commentTextRules = []Rule{
		Required(MsgCommentRequired),
		MaxLength(MaxCommentTextLength, MsgCommentTooLong),
	}
)

// Story validates the story form fields.
func Story(title, text string) []string {
	return Validate(
		Field{Name: "title", Value: title, Rules: storyTitleRules},
		Field{Name: "text", Value: text, Rules: storyTextRules},
	)
}

// Comment validates the comment form field.
func Comment(text string) []string {
	return Validate(Field{Name: "text", Value: text, Rules: commentTextRules})
}
