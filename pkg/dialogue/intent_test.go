package dialogue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldTerminate(t *testing.T) {
	c := NewLexiconClassifier()

	tests := []struct {
		input string
		want  bool
	}{
		{"not interested, bye", true},
		{"BYE", true},
		{"please stop calling me", true},
		{"no thanks", true},
		{"maybe call later", true},
		{"I don't want this", true},
		{"we're already using something", true},
		{"tell me more about pricing", false},
		{"sounds interesting", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ShouldTerminate(tt.input))
		})
	}
}

func TestIsGoodbye(t *testing.T) {
	c := NewLexiconClassifier()

	tests := []struct {
		input string
		want  bool
	}{
		{"Goodbye, and have a lovely afternoon!", true},
		{"Thank you for your time today.", true},
		{"I wish you well with the launch.", true},
		{"That's all from my side.", true},
		{"Great, let me tell you about our pricing.", false},
		{"Can I ask what CRM you use today?", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsGoodbye(tt.input))
		})
	}
}

func TestClassifierIsIdempotent(t *testing.T) {
	c := NewLexiconClassifier()

	// Pure function of the text: repeated calls agree.
	for _, input := range []string{"not interested, bye", "tell me more", ""} {
		first := c.ShouldTerminate(input)
		second := c.ShouldTerminate(input)
		assert.Equal(t, first, second, "input %q", input)
	}
}
