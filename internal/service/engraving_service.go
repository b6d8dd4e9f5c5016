package service

import (
	"context"
	"fmt"
	"strings"

	"ai-scorestudio/internal/constant"
	"ai-scorestudio/pkg/llm"
	"ai-scorestudio/pkg/musicxml"
)

// IEngravingService runs the notation-polishing pass over a generated score.
type IEngravingService interface {
	// Engrave returns the polished score and a short list of improvement
	// notes. Falls back to the input document if no score can be extracted
	// from the model response.
	Engrave(ctx context.Context, xmlString string) (string, []string, error)
}

type engravingService struct {
	provider  llm.LLMProvider
	model     string
	maxTokens int
}

func NewEngravingService(provider llm.LLMProvider, model string, maxTokens int) IEngravingService {
	return &engravingService{
		provider:  provider,
		model:     model,
		maxTokens: maxTokens,
	}
}

func (es *engravingService) Engrave(ctx context.Context, xmlString string) (string, []string, error) {
	prompt := "Review and improve this MusicXML score for professional engraving standards.\n\n" +
		"```musicxml\n" + xmlString + "\n```\n\n" +
		"Apply proper engraving standards and output the complete corrected MusicXML."

	opts := []llm.Option{
		llm.WithSystem(constant.EngravingSystemPrompt),
		llm.WithMaxTokens(es.maxTokens),
	}
	if es.model != "" {
		opts = append(opts, llm.WithModel(es.model))
	}

	reply, err := es.provider.Generate(ctx, prompt, opts...)
	if err != nil {
		return "", nil, fmt.Errorf("engraving pass: %w", err)
	}

	engraved, ok := musicxml.ExtractBlock(reply)
	if !ok {
		// Model narrated without a score; keep the original.
		engraved = xmlString
	}

	return engraved, extractImprovements(reply), nil
}

// extractImprovements pulls the bullet points preceding the code block out of
// the model response, capped at five.
func extractImprovements(text string) []string {
	codeStart := strings.Index(text, "```")
	if codeStart == -1 {
		return nil
	}

	var improvements []string
	for _, line := range strings.Split(text[:codeStart], "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "-"), strings.HasPrefix(line, "*"), strings.HasPrefix(line, "•"):
			improvements = append(improvements, strings.TrimSpace(strings.TrimLeft(line, "-*• ")))
		case len(line) > 2 && line[0] >= '1' && line[0] <= '9' && line[1] == '.':
			improvements = append(improvements, strings.TrimSpace(line[2:]))
		}
		if len(improvements) == 5 {
			break
		}
	}
	return improvements
}
