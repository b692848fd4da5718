package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/model"
	"edu_content_backend/internal/util"
	"edu_content_backend/pkg/logger"
	"edu_content_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// PipelineService runs the extraction sequence for one uploaded material:
// the external parser turns the document into text, the model turns the text
// into a keyword tree, and the tree is persisted for the course.
type PipelineService struct {
	Parser   *DocParseService
	AI       *AIService
	Keywords *KeywordService
	Prompts  *PromptProvider
	Cfg      config.PipelineConfig
}

func NewPipelineService(parser *DocParseService, ai *AIService, keywords *KeywordService, prompts *PromptProvider, cfg config.PipelineConfig) *PipelineService {
	return &PipelineService{
		Parser:   parser,
		AI:       ai,
		Keywords: keywords,
		Prompts:  prompts,
		Cfg:      cfg,
	}
}

// Run executes the pipeline. Transient transport failures
// (ErrPipelineUnavailable) are retried with exponential backoff up to the
// configured bound; malformed model output (ErrExtraction) is never retried.
// Nothing is written unless every step before materialization succeeds, and
// materialization itself is one transaction.
func (p *PipelineService) Run(ctx context.Context, course *model.Course, material *model.CourseMaterial, doc io.Reader) ([]model.Keyword, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Cfg.RequestTimeout)
	defer cancel()

	// Buffer the document so a transient parser failure can be retried
	// from the start of the stream.
	data, err := io.ReadAll(doc)
	if err != nil {
		return nil, err
	}

	var text string
	err = p.withRetry(ctx, func() error {
		var parseErr error
		text, parseErr = p.Parser.Parse(ctx, material.Title, bytes.NewReader(data))
		return parseErr
	})
	if err != nil {
		monitoring.PipelineRuns.WithLabelValues("parser_error").Inc()
		return nil, err
	}

	tpl, err := p.Prompts.Active()
	if err != nil {
		return nil, err
	}
	system, prompt := tpl.Render(text, course.Name)

	var response string
	err = p.withRetry(ctx, func() error {
		var chatErr error
		response, chatErr = p.AI.Chat(ctx, system, prompt)
		return chatErr
	})
	if err != nil {
		monitoring.PipelineRuns.WithLabelValues("model_error").Inc()
		return nil, err
	}

	nodes, err := ExtractKeywordNodes(response)
	if err != nil {
		monitoring.PipelineRuns.WithLabelValues("extraction_error").Inc()
		return nil, err
	}

	_, keywords, err := p.Keywords.MaterializeTree(course, material.ID, nodes)
	if err != nil {
		monitoring.PipelineRuns.WithLabelValues("db_error").Inc()
		return nil, err
	}

	monitoring.PipelineRuns.WithLabelValues("ok").Inc()
	logger.Log.Info("Keyword pipeline completed",
		zap.Uint("courseId", course.ID),
		zap.Uint("materialId", material.ID),
		zap.Int("keywords", len(keywords)))

	return keywords, nil
}

// withRetry retries fn only while it keeps failing with
// ErrPipelineUnavailable; structural failures abort immediately.
func (p *PipelineService) withRetry(ctx context.Context, fn func() error) error {
	backoff := p.Cfg.RetryBackoff
	var err error

	for attempt := 0; attempt < p.Cfg.MaxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if !errors.Is(err, util.ErrPipelineUnavailable) {
			return err
		}
		if attempt == p.Cfg.MaxRetries-1 {
			break
		}

		logger.Log.Warn("Pipeline call failed, retrying",
			zap.Int("attempt", attempt+1), zap.Error(err))

		select {
		case <-ctx.Done():
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return err
}
