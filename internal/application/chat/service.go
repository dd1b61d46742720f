package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/sentichain/internal/application"
	"github.com/bryanwahyu/sentichain/internal/domain/ai"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
	"github.com/bryanwahyu/sentichain/internal/domain/storage"
)

// NoAnswer is the reply used when the provider returns nothing.
const NoAnswer = "I cannot provide an answer."

// CurrentFunc supplies the current analysis when the request carries no context.
type CurrentFunc func() (text string, result *sentiment.Result, ok bool)

type Service struct {
	client  ai.Client
	archive storage.ArtifactStore // optional
	current CurrentFunc
	clock   application.Clock
	log     *slog.Logger
}

func NewService(client ai.Client, archive storage.ArtifactStore, current CurrentFunc, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{client: client, archive: archive, current: current, clock: application.SystemClock{}, log: log}
}

// Request carries the question and optional analysis context.
type Request struct {
	Message         string            `json:"message"`
	OriginalText    string            `json:"originalText,omitempty"`
	AnalysisResults *sentiment.Result `json:"analysisResults,omitempty"`
	UserID          string            `json:"-"`
}

type Reply struct {
	Reply      string `json:"reply"`
	ArchiveURL string `json:"archive_url,omitempty"`
	HasContext bool   `json:"has_context"`
}

// transcript is the archived record of one exchange.
type transcript struct {
	UserID          string            `json:"user_id"`
	OriginalText    string            `json:"original_text,omitempty"`
	AnalysisResults *sentiment.Result `json:"analysis_results,omitempty"`
	Message         string            `json:"message"`
	Reply           string            `json:"reply"`
	CreatedAt       time.Time         `json:"created_at"`
}

// Ask answers a question about the supplied analysis, or the current one when none is supplied.
func (s *Service) Ask(ctx context.Context, req Request) (Reply, error) {
	if s == nil || s.client == nil {
		return Reply{}, ai.ErrUnavailable
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return Reply{}, sentiment.NewInputError("missing 'message' in request")
	}

	text, result := strings.TrimSpace(req.OriginalText), req.AnalysisResults
	if (text == "" || result == nil) && s.current != nil {
		if t, r, ok := s.current(); ok {
			text, result = t, r
		}
	}
	hasContext := text != "" && result != nil

	var analysisJSON string
	if hasContext {
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return Reply{}, fmt.Errorf("encode analysis: %w", err)
		}
		analysisJSON = string(b)
	}

	reply, err := s.client.Chat(ctx, []ai.Message{
		{Role: ai.RoleSystem, Content: SystemPrompt()},
		{Role: ai.RoleUser, Content: UserPrompt(text, analysisJSON, hasContext, msg)},
	})
	if err != nil {
		if errors.Is(err, ai.ErrQuotaExceeded) {
			return Reply{}, err
		}
		return Reply{}, &sentiment.TransportError{Op: "chat", Err: err}
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Reply{Reply: NoAnswer, HasContext: hasContext}, nil
	}

	out := Reply{Reply: reply, HasContext: hasContext}
	if s.archive != nil {
		url, err := s.store(ctx, transcript{
			UserID:          userOrAnonymous(req.UserID),
			OriginalText:    text,
			AnalysisResults: result,
			Message:         msg,
			Reply:           reply,
			CreatedAt:       s.clock.Now().UTC(),
		})
		if err != nil {
			// archive gagal tidak menggagalkan reply
			s.log.Warn("archive chat transcript failed", "err", err)
		} else {
			out.ArchiveURL = url
		}
	}
	return out, nil
}

func (s *Service) store(ctx context.Context, t transcript) (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("chat/%s/%s.json", t.CreatedAt.Format("2006-01-02"), uuid.NewString())
	return s.archive.Put(ctx, key, b, "application/json")
}

func userOrAnonymous(id string) string {
	if strings.TrimSpace(id) == "" {
		return "anonymous"
	}
	return id
}
