package telephony

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// Minimal TwiML response builder. It intentionally avoids any provider SDK
// dependency; only the verbs the voice flow needs are modeled.

// Response is the TwiML document root.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

// Say speaks text to the caller.
type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

// Pause waits silently for the given number of seconds.
type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  string   `xml:"length,attr,omitempty"`
}

// Gather collects caller speech and posts it to Action.
type Gather struct {
	XMLName xml.Name `xml:"Gather"`
	Input   string   `xml:"input,attr,omitempty"`
	Action  string   `xml:"action,attr,omitempty"`
	Method  string   `xml:"method,attr,omitempty"`
	Timeout int      `xml:"timeout,attr,omitempty"`
	Verbs   []any    `xml:",any"`
}

// Hangup ends the call.
type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Redirect hands call control to another webhook URL.
type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

const (
	sayVoice    = "alice"
	sayLanguage = "en-US"

	// Short speech timeout keeps the conversation snappy.
	speechTimeout = 4

	chunkPause = "0.5"
)

// Render serializes a TwiML response document.
func Render(r *Response) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// spokenChunks turns a reply into alternating Say and Pause verbs, one
// sentence at a time, so the voice keeps a human pace.
func spokenChunks(reply string) []any {
	var verbs []any
	for _, chunk := range SplitSentences(reply) {
		verbs = append(verbs, Say{Voice: sayVoice, Language: sayLanguage, Text: chunk})
		verbs = append(verbs, Pause{Length: chunkPause})
	}
	return verbs
}

// sayAndHangup is the terminal response for error paths.
func sayAndHangup(text string) *Response {
	return &Response{Verbs: []any{
		Say{Text: text},
		Hangup{},
	}}
}

// SplitSentences splits a reply on sentence boundaries, keeping the closing
// punctuation with each sentence. Newlines are flattened to spaces first.
func SplitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")

	var out []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '?' || r == '!' {
			if s := strings.TrimSpace(b.String()); s != "" {
				out = append(out, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		out = append(out, s)
	}
	return out
}
