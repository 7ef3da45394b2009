package inference

import (
	"fmt"
	"strings"
)

// PromptBuilder constructs standardized prompts for the analysis calls.
type PromptBuilder struct{}

// maxSourceChars caps how much of a file is sent per request. Larger files
// are truncated head-first; declarations near the top carry most of the
// structural signal.
const maxSourceChars = 25000

const jsonInstruction = "\nRespond with a single JSON object and nothing else. No prose, no markdown fences.\n"

func (pb *PromptBuilder) BuildFileAnalysisPrompt(filePath, language string, source []byte) string {
	var sb strings.Builder
	sb.WriteString("Role: Static analyzer for a legacy code migration. Task: extract the structural metadata of one source file.\n")
	fmt.Fprintf(&sb, "\nFile: %s\nLanguage: %s\n", filePath, language)
	sb.WriteString("\nReturn a JSON object with this shape:\n")
	sb.WriteString(`{
  "functions": [{"name": "", "return_type": "", "arguments": [{"name": "", "type": ""}], "decorators": [], "is_static": false, "is_async": false, "doc": ""}],
  "classes": [{"name": "", "kind": "", "is_static": false, "is_final": false, "superclasses": [], "interfaces": [], "methods": [], "attributes": [{"name": "", "type": "", "visibility": ""}], "doc": ""}],
  "enums": [{"name": "", "values": []}],
  "extensions": [{"name": "", "base_type": "", "methods": []}]
}` + "\n")
	sb.WriteString("\nRules:\n")
	sb.WriteString("- \"kind\" is one of: plain, abstract, interface, singleton, struct.\n")
	sb.WriteString("- Use \"Any\" when a type cannot be determined.\n")
	sb.WriteString("- Omit entries you are not confident about; an empty list is better than a guess.\n")
	sb.WriteString(jsonInstruction)
	sb.WriteString("\nSource:\n```\n")
	sb.WriteString(truncateSource(source))
	sb.WriteString("\n```\n")
	return sb.String()
}

func (pb *PromptBuilder) BuildClassificationPrompt(filePath, language string, source []byte) string {
	var sb strings.Builder
	sb.WriteString("Role: Software architect reviewing a legacy codebase. Task: classify one file's architectural role.\n")
	fmt.Fprintf(&sb, "\nFile: %s\nLanguage: %s\n", filePath, language)
	sb.WriteString("\nPick exactly one category:\n")
	sb.WriteString("- ui: presentation, views, templates, styling\n")
	sb.WriteString("- logic: business rules, services, algorithms\n")
	sb.WriteString("- data: persistence, models, schemas, queries\n")
	sb.WriteString("- config: settings, environment, build wiring\n")
	sb.WriteString("\nRespond with a JSON object: {\"component_type\": \"<category>\"}\n")
	sb.WriteString(jsonInstruction)
	sb.WriteString("\nSource:\n```\n")
	sb.WriteString(truncateSource(source))
	sb.WriteString("\n```\n")
	return sb.String()
}

func truncateSource(source []byte) string {
	if len(source) <= maxSourceChars {
		return string(source)
	}
	return string(source[:maxSourceChars]) + "\n... (truncated)"
}
