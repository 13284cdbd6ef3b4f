package pipeline

import "strings"

const ExtractionInstruction = "Provide whatever you can read and extract from the image."

const classificationTemplate = `
Classify the provided text into exactly one of these categories:
- Legal Document
- Real Estate Document
- Invoice or Receipt
- Product Image
- Unknown: If the provided text is none of the above categories

Extracted Text:
{text}

Category:
`

// ClassificationPrompt inserts text into the classification template as-is.
// Template-like syntax inside text is not interpreted.
func ClassificationPrompt(text string) string {
	return strings.Replace(classificationTemplate, "{text}", text, 1)
}
