package sentiment

import "context"

// RemoteAnalyzer port (the "advanced" model collaborator)
type RemoteAnalyzer interface {
	Analyze(ctx context.Context, text string) (RemoteResponse, error)
}

// Fetcher port (download a page and return its readable text)
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// SentenceClassifier labels each unit with a sentiment, confidence and toxicity verdict.
// Implementations return one Detail per unit, in order.
type SentenceClassifier interface {
	Classify(ctx context.Context, units []string) ([]Detail, error)
}
