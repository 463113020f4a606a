package extract

import (
	"fmt"
	"strings"

	"github.com/kolekta/extract-cli/internal/model"
)

const promptHeader = `You are an information extraction engine.
Return ONLY a valid JSON object that matches the given form field IDs.
Rules: No prose, no explanations, no Markdown. Keys must exactly match field 'id' values.
- Extract ANY relevant information from the text, even if field names don't match exactly
- Look for similar concepts (e.g., 'Patient ID' could match 'patientId', 'Patient Name' could match 'fullName')
- For dates, accept any format and convert to YYYY-MM-DD
- For select fields with options, match closest option or leave null if no match
- For multiselect, return array of matched values`

// strictSuffix is appended for the single permitted retry after a parse
// failure.
const strictSuffix = "\nRespond ONLY with JSON. If a field is unknown, put null."

const multiRowHeader = `You are an information extraction engine for MULTI-ROW documents.
The source text contains MULTIPLE entries/rows/records (like a table, log, or register).
Extract ALL rows, returning a JSON object with:
- "rows": array of objects, each containing extracted fields for one row
- "total_rows": number of rows extracted
If there is only ONE entry, still return it as a single-element array.
If a row has missing data for a field, set it to null.
Return ONLY valid JSON. No prose, no Markdown.`

// BuildPrompt renders the schema field list and the source text into one
// instruction block.
func BuildPrompt(s model.FormSchema, text string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	b.WriteString("\n\nSchema fields to extract:\n")
	writeFieldList(&b, s)
	b.WriteString("\nText to extract from:\n")
	b.WriteString(text)
	b.WriteString("\n")
	return b.String()
}

// BuildStrictPrompt is the retry variant: the same prompt with an
// explicit null-for-unknown instruction appended.
func BuildStrictPrompt(s model.FormSchema, text string) string {
	return BuildPrompt(s, text) + strictSuffix
}

// BuildMultiRowPrompt renders the tabular/register extraction variant.
func BuildMultiRowPrompt(s model.FormSchema, text string) string {
	var b strings.Builder
	b.WriteString(multiRowHeader)
	b.WriteString("\n\nSchema fields to extract for EACH row:\n")
	writeFieldList(&b, s)
	b.WriteString("\nText to extract from:\n")
	b.WriteString(text)
	b.WriteString("\n")
	return b.String()
}

func writeFieldList(b *strings.Builder, s model.FormSchema) {
	for _, f := range s.Fields {
		req := "optional"
		if f.Required {
			req = "REQUIRED"
		}
		fmt.Fprintf(b, "- %s (%s, %s)", f.ID, f.Type, req)
		if len(f.Options) > 0 {
			fmt.Fprintf(b, " - Valid options: %s", strings.Join(f.Options, ", "))
		}
		if f.Description != "" {
			fmt.Fprintf(b, " - Description: %s", f.Description)
		}
		b.WriteString("\n")
	}
}
