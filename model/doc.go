// Package model defines the text-generation collaborator contract used by
// the pipeline, with provider adapters in sub-packages (anthropic, openai).
// The pipeline only ever needs prompt-in/text-out generation with an output
// budget, so the interface stays deliberately small; provider specifics
// (message shapes, system prompts, temperatures) live behind the adapters.
package model
