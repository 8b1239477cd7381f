package openai

import "fmt"

const criteriaResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "expertise": {
      "description": "Areas of expertise to search for",
      "type": "array",
      "items": {"type": "string"}
    },
    "years_of_experience": {
      "description": "Minimum years of experience required",
      "type": ["integer", "null"]
    },
    "organization": {
      "description": "Organizations to search for",
      "type": "array",
      "items": {"type": "string"}
    },
    "field_of_interest": {
      "description": "Fields of interest to search for",
      "type": "array",
      "items": {"type": "string"}
    },
    "requirements": {
      "description": "Specific requirements to search for",
      "type": "array",
      "items": {"type": "string"}
    }
  },
  "additionalProperties": false
}`

const criteriaPromptTemplate = `You are an expert at extracting search criteria from natural language queries about people.
Extract the following information:
- Areas of expertise
- Years of experience
- Organizations
- Fields of interest
- Specific requirements

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- If a field is not mentioned in the query, use an empty list, or null for years_of_experience.
- years_of_experience is a whole number: "more than 12 years" means 12.
- Keep organization names as written, correcting obvious typos only.
- Do not invent criteria the query does not state or clearly imply.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Find experts in Cloud Computing more than 5 years of experience"
Output:
{"expertise":["Cloud Computing"],"years_of_experience":5,"organization":[],"field_of_interest":[],"requirements":[]}

Example (misspelled, informal):
Input: "i want people who working in the AppGenius Inc. more tha 12 yeasr of exxperinse"
Output:
{"expertise":[],"years_of_experience":12,"organization":["AppGenius Inc."],"field_of_interest":[],"requirements":[]}

Example:
Input: "Find experts who worked at Google"
Output:
{"expertise":[],"years_of_experience":null,"organization":["Google"],"field_of_interest":[],"requirements":[]}`

// buildSystemPrompt creates the system prompt with the response schema embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(criteriaPromptTemplate, criteriaResponseSchema)
}
