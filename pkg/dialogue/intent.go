package dialogue

import "strings"

// IntentClassifier decides when a conversation should end. Implementations
// must be pure functions of the input text.
type IntentClassifier interface {
	// ShouldTerminate reports whether a user utterance signals the lead wants
	// the call to end.
	ShouldTerminate(userInput string) bool
	// IsGoodbye reports whether an assistant reply is itself a sign-off.
	IsGoodbye(reply string) bool
}

// Termination phrases matched case-insensitively as substrings of the user's
// speech.
var terminationLexicon = []string{
	"bye",
	"not interested",
	"stop",
	"no thanks",
	"call later",
	"don't want",
	"already using",
}

// Sign-off phrases matched case-insensitively as substrings of the
// assistant's reply.
var goodbyeLexicon = []string{
	"goodbye",
	"thank you for your time",
	"wish you well",
	"wish you a great day",
	"that's all",
	"not interested",
	"no thanks",
	"bye",
}

// LexiconClassifier is the default substring-matching classifier.
type LexiconClassifier struct {
	termination []string
	goodbye     []string
}

// NewLexiconClassifier creates a classifier with the default phrase lists.
func NewLexiconClassifier() *LexiconClassifier {
	return &LexiconClassifier{
		termination: terminationLexicon,
		goodbye:     goodbyeLexicon,
	}
}

func (c *LexiconClassifier) ShouldTerminate(userInput string) bool {
	return matchesAny(userInput, c.termination)
}

func (c *LexiconClassifier) IsGoodbye(reply string) bool {
	return matchesAny(reply, c.goodbye)
}

func matchesAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
