package generator

import (
	"fmt"
	"strings"

	"github.com/shouni/gemini-studio-kit/pkg/domain"
)

// withNegativePrompt は Imagen 向けにネガティブプロンプトを本文へ連結します。
func withNegativePrompt(prompt, negativePrompt string) string {
	if strings.TrimSpace(negativePrompt) == "" {
		return prompt
	}
	return fmt.Sprintf("%s, negative prompt: %s", prompt, negativePrompt)
}

// composeInstruction は合成リクエストの最後に置く指示文を組み立てます。
func composeInstruction(prompt, negativePrompt string, aspectRatio domain.AspectRatio) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(prompt))
	fmt.Fprintf(&sb, "\n\nOutput aspect ratio: %s.", aspectRatio)
	if neg := strings.TrimSpace(negativePrompt); neg != "" {
		fmt.Fprintf(&sb, "\nAvoid: %s.", neg)
	}
	return sb.String()
}

// joinNonEmpty は空でない文字列だけを半角スペースで連結します。
func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
