package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "a b", joinNonEmpty("a", "", "b"))
	assert.Equal(t, "a", joinNonEmpty("a", ""))
	assert.Empty(t, joinNonEmpty("", ""))
}

func TestModels_WithDefaults(t *testing.T) {
	assert.Equal(t, DefaultModels(), Models{}.WithDefaults())

	got := Models{Video: "veo-custom"}.WithDefaults()
	assert.Equal(t, "veo-custom", got.Video)
	assert.Equal(t, DefaultImageModel, got.Image)
	assert.Equal(t, DefaultEditModel, got.Edit)
	assert.Equal(t, DefaultTextModel, got.Text)
}

func TestComposeInstruction(t *testing.T) {
	got := composeInstruction("  on a desk ", "", domain.AspectClassic)
	assert.Equal(t, "on a desk\n\nOutput aspect ratio: 4:3.", got)

	got = composeInstruction("on a desk", "logos", domain.AspectSquare)
	assert.Equal(t, "on a desk\n\nOutput aspect ratio: 1:1.\nAvoid: logos.", got)
}
