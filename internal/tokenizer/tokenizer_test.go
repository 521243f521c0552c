package tokenizer

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{""}},
		{"single word", "hello", []string{"hello"}},
		{"two words", "hello world", []string{"hello", " ", "world"}},
		{"path", "org/tool-x", []string{"org", "/", "tool", "-", "x"}},
		{"leading separator", "-a", []string{"", "-", "a"}},
		{"trailing separator", "a.", []string{"a", ".", ""}},
		{"separator run", "a -- b", []string{"a", " -- ", "b"}},
		{"underscore is a word character", "my_var name", []string{"my_var", " ", "name"}},
		{"only symbols", "!@#", []string{"", "!@#", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPhrases(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"single word", "cmake", []string{"cmake"}},
		{"space separated words", "hello world", []string{"hello", "world"}},
		{"path", "org/tool-x", []string{"org", "org/tool", "org/tool-x", "tool", "tool-x", "x"}},
		{"version string", "1.2.3", []string{"1", "1.2", "1.2.3", "2", "2.3", "3"}},
		{"phrase stops at space", "a.b c", []string{"a", "a.b", "b", "c"}},
		{"leading separator", "-a", []string{"-a", "a"}},
		{"duplicate words", "x/x", []string{"x", "x/x"}},
		{"only symbols", "!@#", []string{"!@#"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Phrases(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Phrases(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
