package report

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	domain "github.com/medvisionlab/chestray/internal/domain/report"
	"github.com/medvisionlab/chestray/internal/domain/scoring"
)

type stubGenerator struct {
	text string
	err  error
	fn   func(ctx context.Context, preds []scoring.Prediction) (string, error)
}

func (s *stubGenerator) Generate(ctx context.Context, preds []scoring.Prediction) (string, error) {
	if s.fn != nil {
		return s.fn(ctx, preds)
	}
	return s.text, s.err
}

func somePreds() []scoring.Prediction {
	return []scoring.Prediction{
		{Disease: "Pneumonia", Confidence: 0.9},
		{Disease: "Edema", Confidence: 0.3},
		{Disease: "Fracture", Confidence: 0.02},
	}
}

func TestGenerateSuccess(t *testing.T) {
	svc := NewService(&stubGenerator{text: "Findings: clear."}, time.Second)

	out := svc.Generate(context.Background(), somePreds())

	assert.Equal(t, "Findings: clear.", out)
}

func TestGenerateQuotaErrorFallsBack(t *testing.T) {
	svc := NewService(&stubGenerator{err: fmt.Errorf("provider: %w", domain.ErrQuotaExceeded)}, time.Second)

	out := svc.Generate(context.Background(), somePreds())

	assert.Contains(t, out, "usage limit has been exceeded")
	assert.Contains(t, out, "High probability conditions: Pneumonia")
	assert.Contains(t, out, "Medium probability conditions: Edema")
}

func TestGenerate429InMessageFallsBack(t *testing.T) {
	svc := NewService(&stubGenerator{err: errors.New("upstream said: 429 Too Many Requests")}, time.Second)

	out := svc.Generate(context.Background(), somePreds())

	assert.Contains(t, out, "usage limit has been exceeded")
}

func TestGenerateOtherErrorWrapped(t *testing.T) {
	svc := NewService(&stubGenerator{err: errors.New("connection refused")}, time.Second)

	out := svc.Generate(context.Background(), somePreds())

	assert.Equal(t, "Report service error: connection refused", out)
}

func TestGenerateEmptyTextTreatedAsError(t *testing.T) {
	svc := NewService(&stubGenerator{text: "  \n\t "}, time.Second)

	out := svc.Generate(context.Background(), somePreds())

	assert.Contains(t, out, "Report service error:")
	assert.Contains(t, out, domain.ErrEmptyResponse.Error())
}

func TestGenerateRecoversFromPanic(t *testing.T) {
	svc := NewService(&stubGenerator{fn: func(context.Context, []scoring.Prediction) (string, error) {
		panic("boom")
	}}, time.Second)

	out := svc.Generate(context.Background(), somePreds())

	assert.Equal(t, "An error occurred while generating the report: boom", out)
}

func TestGenerateAppliesTimeout(t *testing.T) {
	svc := NewService(&stubGenerator{fn: func(ctx context.Context, _ []scoring.Prediction) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}, 10*time.Millisecond)

	out := svc.Generate(context.Background(), somePreds())

	assert.Contains(t, out, "Report service error:")
	assert.Contains(t, out, context.DeadlineExceeded.Error())
}

func TestGenerateFallbackHook(t *testing.T) {
	var fallbacks int
	svc := NewService(&stubGenerator{err: errors.New("connection refused")}, time.Second)
	svc.OnFallback = func() { fallbacks++ }

	svc.Generate(context.Background(), somePreds())
	assert.Equal(t, 1, fallbacks)
}

func TestGenerateFallbackHookNotCalledOnSuccess(t *testing.T) {
	var fallbacks int
	svc := NewService(&stubGenerator{text: "Findings: clear."}, time.Second)
	svc.OnFallback = func() { fallbacks++ }

	svc.Generate(context.Background(), somePreds())
	assert.Equal(t, 0, fallbacks)
}

func TestNewServiceDefaultTimeout(t *testing.T) {
	svc := NewService(&stubGenerator{}, 0)
	assert.Equal(t, defaultTimeout, svc.Timeout)
}
