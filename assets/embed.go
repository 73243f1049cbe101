package assets

import "embed"

// PromptFS holds the text/template sources used to build generation prompts.
//
//go:embed prompts/*.tmpl
var PromptFS embed.FS

// PromptPattern matches every template in PromptFS.
const PromptPattern = "prompts/*.tmpl"
