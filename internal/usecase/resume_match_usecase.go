package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/aiclient"
	"skillmatch-backend/pkg/apperror"
	"skillmatch-backend/pkg/security"
)

type resumeMatchUsecase struct {
	analyzer domain.ResumeAnalyzer
}

func NewResumeMatchUsecase(analyzer domain.ResumeAnalyzer) domain.ResumeMatchUsecase {
	return &resumeMatchUsecase{analyzer: analyzer}
}

// Analyze validates locally, then forwards to the analysis service. No
// database work happens here, so nothing is held open during the call.
func (u *resumeMatchUsecase) Analyze(ctx context.Context, resume *domain.Upload, jobDescription string) (*domain.MatchResult, error) {
	if resume == nil || len(resume.Data) == 0 {
		return nil, apperror.BadRequest("Resume file is required")
	}
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return nil, apperror.BadRequest("Job description is required")
	}
	if err := security.MatchPolicy.Validate(resume.Filename, resume.Data); err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	result, err := u.analyzer.Analyze(ctx, resume.Filename, resume.Data, jobDescription)
	if err != nil {
		return nil, analyzerError(err)
	}
	return result, nil
}

func (u *resumeMatchUsecase) Health(ctx context.Context) error {
	if err := u.analyzer.Health(ctx); err != nil {
		return analyzerError(err)
	}
	return nil
}

func analyzerError(err error) error {
	var rejected *aiclient.RejectedError
	if errors.As(err, &rejected) {
		return apperror.New(http.StatusBadRequest, rejected.Message, err)
	}
	return apperror.ServiceUnavailable("Resume analysis service is unavailable, please try again later", err)
}
