package domain

import "context"

type MatchResult struct {
	SimilarityScore float64  `json:"similarityScore"`
	MatchedKeywords []string `json:"matchedKeywords"`
	MissingKeywords []string `json:"missingKeywords"`
}

// ResumeAnalyzer is the external AI analysis service.
type ResumeAnalyzer interface {
	Analyze(ctx context.Context, filename string, data []byte, jobDescription string) (*MatchResult, error)
	Health(ctx context.Context) error
}

type ResumeMatchUsecase interface {
	Analyze(ctx context.Context, resume *Upload, jobDescription string) (*MatchResult, error)
	Health(ctx context.Context) error
}
