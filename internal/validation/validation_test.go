package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		text  string
		want  []string
	}{
		{name: "valid", title: "Hello", text: "World", want: nil},
		{name: "empty title", title: "", text: "World", want: []string{MsgTitleRequired}},
		{name: "whitespace title", title: "   \t", text: "World", want: []string{MsgTitleRequired}},
		{name: "title at limit", title: strings.Repeat("a", 100), text: "x", want: nil},
		{name: "title over limit", title: strings.Repeat("a", 101), text: "x", want: []string{MsgTitleTooLong}},
		{name: "multibyte title at limit", title: strings.Repeat("é", 100), text: "x", want: nil},
		{name: "empty text", title: "Hello", text: "", want: []string{MsgTextRequired}},
		{name: "both empty", title: "", text: " ", want: []string{MsgTitleRequired, MsgTextRequired}},
		{name: "long title and empty text", title: strings.Repeat("b", 150), text: "", want: []string{MsgTitleTooLong, MsgTextRequired}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Story(tc.title, tc.text))
		})
	}
}

func TestComment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "valid", text: "Nice", want: nil},
		{name: "empty", text: "", want: []string{MsgCommentRequired}},
		{name: "blank", text: "\n  ", want: []string{MsgCommentRequired}},
		{name: "at limit", text: strings.Repeat("c", 500), want: nil},
		{name: "over limit", text: strings.Repeat("c", 501), want: []string{MsgCommentTooLong}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Comment(tc.text))
		})
	}
}

func TestValidate_CustomRules(t *testing.T) {
	t.Parallel()

	got := Validate(
		Field{Name: "a", Value: "", Rules: []Rule{Required("a required")}},
		Field{Name: "b", Value: "toolong", Rules: []Rule{MaxLength(3, "b too long")}},
	)
	assert.Equal(t, []string{"a required", "b too long"}, got)
}
