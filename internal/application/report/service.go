package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	domain "github.com/medvisionlab/chestray/internal/domain/report"
	"github.com/medvisionlab/chestray/internal/domain/scoring"
)

const defaultTimeout = 60 * time.Second

// Service wraps the Generator port with the degradation policy: every failure
// mode produces usable text, so the pipeline can always persist a report field.
type Service struct {
	Generator domain.Generator
	Timeout   time.Duration
	// OnFallback is called once per degraded report. Optional.
	OnFallback func()
}

func NewService(g domain.Generator, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{Generator: g, Timeout: timeout}
}

// Generate never returns an error. In order:
//  1. quota exhaustion -> deterministic fallback echoing the high/medium lists;
//  2. any other provider error (timeouts included) -> text wrapping the error;
//  3. success with empty text -> treated as case 2;
//  4. a panic anywhere here -> generic failure text with the detail.
func (s *Service) Generate(ctx context.Context, preds []scoring.Prediction) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("report generation panicked")
			text = fmt.Sprintf("An error occurred while generating the report: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.Generator.Generate(ctx, preds)
	if err == nil && strings.TrimSpace(out) == "" {
		err = domain.ErrEmptyResponse
	}
	if err != nil {
		log.WithError(err).Warn("report generation failed, degrading to fallback text")
		if s.OnFallback != nil {
			s.OnFallback()
		}
		// The original provider may only signal quota trouble inside the
		// message, so match the literal status code as well.
		if errors.Is(err, domain.ErrQuotaExceeded) || strings.Contains(err.Error(), "429") {
			high, medium := domain.Classify(preds)
			return domain.QuotaFallback(high, medium)
		}
		return fmt.Sprintf("Report service error: %v", err)
	}
	return out
}
