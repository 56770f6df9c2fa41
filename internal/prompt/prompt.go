// Package prompt renders retrieval and extraction prompts and declares the
// function-calling tools that force structured output.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/osprey-ai/policybench/internal/model"
	"github.com/osprey-ai/policybench/pkg/openai"
)

const retrievalTemplate = `**DOCUMENT SECTION LIST**
%s

**LINE ITEM INSTRUCTION**
%s

Your objective is to determine whether each section in **DOCUMENT SECTION LIST** contains the information that **LINE ITEM INSTRUCTION** is looking for. You MUST follow the guidelines below:
## MANDATORY THINKING PROCESS
1. Read through **LINE ITEM INSTRUCTION** and understand the targets to look for in the document section.
2. Go through each section throughly and check whether it contains info related to the targets. For EVERY section, write down the evidence and reasoning why it is related in the format of ` + "`- [Section ID]: evidence: [Evidence in this section], reasoning: [Reasoning for this section].\\n`" + `.

## OUTPUT
You MUST call ` + "`output`" + ` tool to output result.`

const extractionTemplate = `**POLICY DOCUMENT**
%s

**POLICY METADATA**
%s

**LINE ITEM DEFINITION**
%s

Your objective is to extract the line item from the policy document. You must follow the guidelines below:

1. Follow exactly the extraction instructions defined in the ` + "`Line item instruction`" + ` field within **LINE ITEM DEFINITION**
2. Go through each section in the **POLICY DOCUMENT** throughly and check whether it contains definitions or phrases related to the extraction item, list ALL the evidence that supports your reasoning for the extraction task.
3. Refer to **POLICY METADATA** for policy-level information and the coverage limits.
4. (IMPORTANT) In insurance policies, endorsement can modify earlier definitions, if there exists endorsement that modifies the parameters of this extraction item, list ALL the evidence and your reasoning how this endorsement affects the extraction item.
5. (IMPORTANT) There is NO DEFAULT VALUE for the line item parameters. If you cannot find the values for the parameters, you must leave the parameters as null and DO NOT ASSUME ANY VALUES.

## OUTPUT
Once you have all the information, call ` + "`extract`" + ` tool to output result.`

// RenderSection formats one section with its ID fence markers.
func RenderSection(s model.Section) string {
	return fmt.Sprintf("==== SECTION ID: %s ====\n%s\n%s\n==== SECTION %s END ====", s.ID, s.Title, s.Text, s.ID)
}

// RenderSectionList formats sections for prompt injection, separated by
// blank lines.
func RenderSectionList(sections []model.Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = RenderSection(s)
	}
	return strings.Join(parts, "\n\n")
}

// Retrieval renders the section-relevance prompt for one section group and
// line item.
func Retrieval(sections []model.Section, spec model.LineItemSpec) string {
	return fmt.Sprintf(retrievalTemplate, RenderSectionList(sections), spec.Instruction)
}

// Extraction renders the extraction prompt over the given sections.
func Extraction(sections []model.Section, meta model.PolicyMetadata, spec model.LineItemSpec) string {
	metaJSON, _ := json.MarshalIndent(meta, "", "    ")
	detail := struct {
		Instruction string         `json:"Line item instruction"`
		Schema      map[string]any `json:"Line item schema"`
	}{Instruction: spec.Instruction, Schema: spec.Schema}
	detailJSON, _ := json.MarshalIndent(detail, "", "    ")
	return fmt.Sprintf(extractionTemplate, RenderSectionList(sections), metaJSON, detailJSON)
}

// RetrievalToolName is the function the retrieval model must call.
const RetrievalToolName = "output"

// ExtractionToolName is the function the extraction model must call.
const ExtractionToolName = "extract"

// RetrievalTool declares the retrieval output tool.
func RetrievalTool() openai.ToolDef {
	return openai.ToolDef{
		Name: RetrievalToolName,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"think": map[string]any{
					"type":        "string",
					"description": "Output your detailed thinking.",
				},
				"relevant_sections": map[string]any{
					"type":        "array",
					"description": "List of section IDs that found evidence related to the targets.",
					"items": map[string]any{
						"type":        "string",
						"description": "Section ID",
					},
				},
			},
			"required":             []string{"think", "relevant_sections"},
			"additionalProperties": false,
		},
	}
}

// extractionDescription overrides the line-item schema description so the
// model outputs null when no evidence is found.
const extractionDescription = "The extracted object for this line item. If the conclusion in your thinking process is `No evidence found`, output null."

// ExtractionTool declares the extraction tool for one line item. In
// reasoning-model mode the think field is omitted since the model reasons
// natively.
func ExtractionTool(spec model.LineItemSpec, reasoningModel bool) openai.ToolDef {
	extraction := make(map[string]any, len(spec.Schema)+1)
	for k, v := range spec.Schema {
		extraction[k] = v
	}
	extraction["description"] = extractionDescription

	properties := map[string]any{}
	var required []string
	if !reasoningModel {
		properties["think"] = map[string]any{
			"type":        "string",
			"description": "Output your detailed thinking process for the extraction task.",
		}
		required = append(required, "think")
	}
	properties["extraction"] = extraction
	required = append(required, "extraction")

	return openai.ToolDef{
		Name: ExtractionToolName,
		Parameters: map[string]any{
			"type":                 "object",
			"properties":           properties,
			"required":             required,
			"additionalProperties": false,
		},
	}
}
