package pipeline

import (
	"strings"
	"text/template"
)

// Style defaults applied when a request does not specify its own.
const (
	DefaultTone                = "casual and engaging"
	DefaultTargetLengthMinutes = "2"
)

// The narration prompt. Its required variables are the extracted text, the
// tone descriptor, and the target duration in minutes.
const scriptPromptTemplate = `You are a creative scriptwriter. Based on the following PDF content, create a humanly, casual, and engaging story-based video script:
{{.Content}}

The script should:
- Be written in a {{.Tone}} style, as if a real person is narrating it.
- Speak directly in a friendly, relatable manner.
- Be approximately {{.Length}} minutes long.
- Include clear scene descriptions, voiceover cues, and natural dialogue where appropriate.
- Flow smoothly from one idea to the next, like a story, rather than a list of points.
- Be ready to be used directly in a voice-over software.

Make it entertaining, easy to follow, and engaging, while keeping the key ideas from the PDF intact.`

var scriptPrompt = template.Must(template.New("script").Parse(scriptPromptTemplate))

type promptData struct {
	Content string
	Tone    string
	Length  string
}

// BuildPrompt renders the narration prompt for the extracted text and style
// parameters. The template is validated at startup and executed over plain
// strings, so rendering itself cannot fail.
func BuildPrompt(extractedText, tone, lengthMinutes string) string {
	if tone == "" {
		tone = DefaultTone
	}
	if lengthMinutes == "" {
		lengthMinutes = DefaultTargetLengthMinutes
	}

	var b strings.Builder
	_ = scriptPrompt.Execute(&b, promptData{
		Content: extractedText,
		Tone:    tone,
		Length:  lengthMinutes,
	})
	return b.String()
}
