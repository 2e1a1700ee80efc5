package ai

import (
	"fmt"
	"strings"

	"github.com/thinkscotty/stylebot/internal/models"
)

// SystemInstruction is the copy-editor persona sent with every rewrite.
const SystemInstruction = `You are an experienced copywriter. Your task is to rewrite the source text so that it matches the vocabulary and style of the examples below.
#### How to do the task
1. Analyze the source text and identify its main idea.
2. Rework the structure of the text to fit the style of the examples.
3. Change the manner of presentation to follow the style of the examples.
4. Keep the clarity and persuasiveness of the original, avoiding repetition and unnecessary words.
#### Quality criteria
- Key information is conveyed clearly and accurately
- The text matches the kind and style of the examples
- The appeal and impact of the original text are preserved
- Correct grammar and language norms
#### Response format
- Rewrite the source text in the style of the examples.
- Return only the rewritten text, following the quality criteria.`

// RewriteRequest is built fresh for every rewrite.
type RewriteRequest struct {
	SystemInstruction string
	Examples          models.ExampleSet
	SourceText        string
}

func NewRewriteRequest(examples models.ExampleSet, sourceText string) RewriteRequest {
	return RewriteRequest{
		SystemInstruction: SystemInstruction,
		Examples:          examples,
		SourceText:        sourceText,
	}
}

// Prompt renders the numbered examples followed by the labeled source text.
// The output depends only on the request's fields.
func (r RewriteRequest) Prompt() string {
	var sb strings.Builder
	for _, ex := range r.Examples {
		fmt.Fprintf(&sb, "\nExample %d: %s\n", ex.Ordinal, ex.Text)
	}
	sb.WriteString("\nSource text: ")
	sb.WriteString(r.SourceText)
	return sb.String()
}
