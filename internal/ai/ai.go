// Package ai generates stories, chapter illustrations, and prompt
// enhancements through an OpenAI-compatible backend, with a built-in demo
// generator for keyless operation.
package ai

import (
	"context"

	"github.com/storybookapp/storybook-server/internal/domain"
)

// Generator produces story content. Implementations must be safe for
// concurrent use; every method honors context cancellation.
type Generator interface {
	// GenerateStory writes a complete story for the prompt. The returned
	// story has no storage ID, at least one chapter, HTML chapter content,
	// and fresh chapter IDs.
	GenerateStory(ctx context.Context, prompt string, genre domain.Genre, audience domain.Audience) (*domain.Story, error)

	// GenerateChapterImage produces an illustration for a chapter's text and
	// returns it as an image data URI. customPrompt, when non-empty, is
	// appended to the derived scene description.
	GenerateChapterImage(ctx context.Context, chapterContent, customPrompt string) (string, error)

	// EnhancePrompt expands a story idea into a more vivid single paragraph.
	EnhancePrompt(ctx context.Context, prompt string) (string, error)

	// CheckConnection verifies the backend is reachable and the key works.
	CheckConnection(ctx context.Context) error
}

// illustrationStylePrefix anchors every image request to the product's
// visual style.
const illustrationStylePrefix = "children's storybook illustration style, "
