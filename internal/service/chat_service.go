package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"ai-scorestudio/internal/constant"
	"ai-scorestudio/internal/dto"
	"ai-scorestudio/internal/events"
	"ai-scorestudio/internal/pkg/logger"
	"ai-scorestudio/pkg/composer"
	"ai-scorestudio/pkg/llm"
	"ai-scorestudio/pkg/musicxml"
)

// IChatService defines the composition chat service interface
type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
	ChatStream(ctx context.Context, req *dto.ChatRequest, emit func(composer.Frame) error) error
	Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.ChatResponse, error)
	Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error)
	Reset(ctx context.Context)
}

// chatService holds the per-process conversation and drives the LLM provider
type chatService struct {
	mu        sync.Mutex
	history   []llm.Message
	provider  llm.LLMProvider
	engraving IEngravingService
	bus       *events.Bus
	logger    logger.ILogger
	maxTokens int
}

func NewChatService(provider llm.LLMProvider, engraving IEngravingService, bus *events.Bus, log logger.ILogger, maxTokens int) IChatService {
	return &chatService{
		provider:  provider,
		engraving: engraving,
		bus:       bus,
		logger:    log,
		maxTokens: maxTokens,
	}
}

// Reset clears the conversation history for a new session.
func (cs *chatService) Reset(ctx context.Context) {
	cs.mu.Lock()
	cs.history = nil
	cs.mu.Unlock()
	cs.logger.Info("ChatService", "Conversation reset", nil)
}

// Chat sends one message and returns the full response, with the generated
// score extracted and validated when present.
func (cs *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	messages := cs.appendUserMessage(req)

	reply, err := cs.provider.Chat(ctx, messages,
		llm.WithSystem(constant.ComposerSystemPrompt),
		llm.WithMaxTokens(cs.maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	cs.appendAssistantMessage(reply)

	resp := &dto.ChatResponse{Text: reply}
	if xml, ok := musicxml.ExtractBlock(reply); ok {
		resp.MusicXML = xml
		valid := true
		if verr := musicxml.Validate(xml); verr != nil {
			valid = false
			resp.ValidationError = verr.Error()
		}
		resp.Valid = &valid
	}
	return resp, nil
}

// Generate composes a passage from a structured description. It is a prompt
// wrapper over Chat, so the generated passage joins the conversation.
func (cs *chatService) Generate(ctx context.Context, req *dto.GenerateRequest) (*dto.ChatResponse, error) {
	key := req.Key
	if key == "" {
		key = "C"
	}
	timeBeats := req.TimeBeats
	if timeBeats == 0 {
		timeBeats = 4
	}
	timeBeatType := req.TimeBeatType
	if timeBeatType == 0 {
		timeBeatType = 4
	}
	measures := req.Measures
	if measures == 0 {
		measures = 4
	}

	prompt := fmt.Sprintf(`Generate a musical passage with these specifications:
- Description: %s
- Key: %s
- Time signature: %d/%d
- Length: %d measures

Create valid MusicXML that can be imported directly into a notation editor.`,
		req.Description, key, timeBeats, timeBeatType, measures)

	return cs.Chat(ctx, &dto.ChatRequest{Message: prompt})
}

// Analyze asks the model for a structural and harmonic reading of a score.
func (cs *chatService) Analyze(ctx context.Context, req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	prompt := "Analyze this musical score and provide:\n" +
		"1. Key and time signature\n" +
		"2. Melodic patterns and motifs\n" +
		"3. Harmonic analysis\n" +
		"4. Suggestions for development or improvement\n\n" +
		"```musicxml\n" + req.MusicXML + "\n```"

	resp, err := cs.Chat(ctx, &dto.ChatRequest{Message: prompt})
	if err != nil {
		return nil, err
	}
	return &dto.AnalyzeResponse{Analysis: resp.Text}, nil
}

// ChatStream streams a composition response as protocol frames: partial
// measure-count updates while the model writes, an engraving marker, then
// the final complete document.
func (cs *chatService) ChatStream(ctx context.Context, req *dto.ChatRequest, emit func(composer.Frame) error) error {
	messages := cs.appendUserMessage(req)

	var (
		emitFailed   bool
		lastMeasures int
	)
	safeEmit := func(f composer.Frame) {
		if emitFailed {
			return
		}
		if err := emit(f); err != nil {
			emitFailed = true
			cs.logger.Warn("ChatService", "Client stopped consuming stream", map[string]interface{}{"error": err.Error()})
		}
	}

	var builder strings.Builder
	accumulated, err := cs.provider.ChatStream(ctx, messages, func(delta string) {
		builder.WriteString(delta)
		// Surface streaming progress: a growing measure count once the
		// partial score becomes completable, plain narration tokens before.
		if partial, measures, ok := musicxml.CompletePartial(builder.String()); ok {
			if measures > lastMeasures {
				lastMeasures = measures
				safeEmit(composer.Frame{Type: composer.FramePartial, Measures: measures, MusicXML: partial})
				cs.publish(events.EventProgress, map[string]interface{}{"phase": "composing", "measures": measures})
			}
		} else {
			safeEmit(composer.Frame{Type: composer.FrameText, Content: delta})
		}
	}, llm.WithSystem(constant.ComposerSystemPrompt), llm.WithMaxTokens(cs.maxTokens))
	if err != nil {
		return fmt.Errorf("composition stream: %w", err)
	}

	cs.appendAssistantMessage(accumulated)

	finalXML, ok := musicxml.ExtractBlock(accumulated)
	if !ok {
		// Nothing composed; the client reports "no score changes generated".
		safeEmit(composer.Frame{Type: composer.FrameComplete})
		return nil
	}

	safeEmit(composer.Frame{Type: composer.FrameEngraving, Status: constant.EngravingStatusMessage})
	cs.publish(events.EventProgress, map[string]interface{}{"phase": "engraving"})

	cs.engrave(ctx, finalXML, safeEmit)
	return nil
}

func (cs *chatService) engrave(ctx context.Context, rawXML string, safeEmit func(composer.Frame)) {
	if err := musicxml.Validate(rawXML); err != nil {
		cs.logger.Warn("ChatService", "Generated score invalid, applying quick fix", map[string]interface{}{"error": err.Error()})
		rawXML = musicxml.QuickFix(rawXML)
	}

	chosen := rawXML
	var improvements []string
	if cs.engraving != nil {
		engraved, notes, err := cs.engraving.Engrave(ctx, rawXML)
		switch {
		case err != nil:
			cs.logger.Warn("ChatService", "Engraving pass failed, using original", map[string]interface{}{"error": err.Error()})
		case musicxml.Validate(engraved) != nil:
			cs.logger.Warn("ChatService", "Engraved score invalid, using original", nil)
		default:
			chosen = engraved
			improvements = notes
		}
	}

	frame := composer.Frame{Type: composer.FrameComplete, MusicXML: chosen}
	if len(improvements) > 0 {
		if raw, err := json.Marshal(improvements); err == nil {
			frame.Improvements = raw
		}
	}
	safeEmit(frame)
	cs.publish(events.EventComplete, map[string]interface{}{"improvements": len(improvements)})
}

// appendUserMessage folds score and selection context into the user turn and
// records it in the conversation.
func (cs *chatService) appendUserMessage(req *dto.ChatRequest) []llm.Message {
	var contextParts []string

	if req.CurrentScore != "" {
		contextParts = append(contextParts, "Current full score (MusicXML):\n```musicxml\n"+req.CurrentScore+"\n```")
	}
	if sel := req.SelectionInfo; sel != nil {
		if sel.StartMeasure > 0 && sel.EndMeasure > 0 {
			contextParts = append(contextParts, fmt.Sprintf("User has selected measures %d to %d.", sel.StartMeasure, sel.EndMeasure))
		}
	}
	if req.SelectedMeasures != "" {
		contextParts = append(contextParts, "Selected measures (MusicXML):\n```musicxml\n"+req.SelectedMeasures+"\n```")
	}

	content := req.Message
	if len(contextParts) > 0 {
		content = strings.Join(contextParts, "\n\n") + "\n\nUser request: " + req.Message
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.history = append(cs.history, llm.Message{Role: constant.ChatMessageRoleUser, Content: content})
	messages := make([]llm.Message, len(cs.history))
	copy(messages, cs.history)
	return messages
}

func (cs *chatService) appendAssistantMessage(content string) {
	cs.mu.Lock()
	cs.history = append(cs.history, llm.Message{Role: constant.ChatMessageRoleAssistant, Content: content})
	cs.mu.Unlock()
}

func (cs *chatService) publish(eventType string, data map[string]interface{}) {
	if cs.bus == nil {
		return
	}
	if err := cs.bus.Publish(eventType, data); err != nil {
		cs.logger.Warn("ChatService", "Failed to publish event", map[string]interface{}{"error": err.Error()})
	}
}
