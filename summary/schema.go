package summary

// prSummarySchema is the JSON schema for PRSummary, embedded in prompts
// so the model knows the target shape. It is maintained by hand as a
// literal: the schema is a prompt contract, and its field descriptions
// steer the model as much as its types do. Keep it in sync with the
// PRSummary struct.
const prSummarySchema = `{
  "title": "PRSummary",
  "type": "object",
  "properties": {
    "types": {
      "type": "array",
      "items": {
        "type": "string",
        "enum": ["Bug fix", "Tests", "Enhancement", "Documentation", "Other"]
      },
      "minItems": 1,
      "description": "one or more types that describe the PR content. Return the label value exactly, e.g. 'Bug fix'."
    },
    "title": {
      "type": "string",
      "description": "an informative title for the PR, describing its main theme"
    },
    "description": {
      "type": "string",
      "description": "an informative and concise description of the PR. Use bullet points. Display first the most significant changes."
    },
    "files": {
      "type": "array",
      "maxItems": 15,
      "items": {
        "type": "object",
        "properties": {
          "filename": {
            "type": "string",
            "description": "the full file path of the relevant file"
          },
          "language": {
            "type": "string",
            "description": "the programming language of the relevant file"
          },
          "changes_summary": {
            "type": "string",
            "description": "concise summary of the changes in the relevant file, in bullet points (1-4 bullet points)"
          },
          "changes_title": {
            "type": "string",
            "description": "an informative title for the changes in the file, describing its main theme (5-10 words)"
          },
          "label": {
            "type": "string",
            "description": "a single semantic label for the type of change in the file, e.g. 'bug fix', 'tests', 'enhancement', 'documentation', 'error handling', 'configuration changes', 'dependencies', 'formatting', 'miscellaneous'"
          }
        },
        "required": ["filename", "language", "changes_summary", "changes_title", "label"]
      },
      "description": "a list of the files changed in the PR and a summary of their changes"
    },
    "comment_threads": {
      "type": "array",
      "maxItems": 100,
      "items": {
        "type": "object",
        "properties": {
          "parent_thread_id": {
            "type": "integer",
            "description": "the id of the thread's root comment"
          },
          "child_thread_ids": {
            "type": "array",
            "items": {"type": "integer"},
            "description": "the ids of the replies in the thread"
          },
          "users": {
            "type": "array",
            "items": {"type": "string"},
            "description": "the users who participated in the thread"
          },
          "url": {
            "type": "string",
            "description": "the url of the thread's root comment"
          },
          "summary": {
            "type": "string",
            "description": "the context of the thread and what it tries to address"
          },
          "details": {
            "type": "string",
            "description": "supporting detail for the summary"
          },
          "eval_aspect": {
            "type": "array",
            "items": {"type": "string"},
            "description": "which evaluation categories the thread falls into, e.g. correctness, readability, testing, design"
          },
          "lead_to_action": {
            "type": "string",
            "description": "what impact the thread had: a code change, a reply, or no action"
          },
          "lead_to_action_desc": {
            "type": "string",
            "description": "description of the lead_to_action field"
          }
        },
        "required": ["parent_thread_id", "child_thread_ids", "users", "url", "summary", "details", "eval_aspect", "lead_to_action", "lead_to_action_desc"]
      },
      "description": "a list of the comment threads in the PR. Display first the most useful threads."
    }
  },
  "required": ["types", "title", "description", "files", "comment_threads"]
}`

// Schema returns the PRSummary JSON schema rendered into prompts.
func Schema() string {
	return prSummarySchema
}
