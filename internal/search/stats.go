package search

import "context"

// Stats reports index size and model health for the stats endpoint.
type Stats struct {
	Books        int64  `json:"books"`
	Embeddings   int64  `json:"embeddings"`
	Questions    int64  `json:"questions"`
	ModelHealthy bool   `json:"model_healthy"`
	ModelError   string `json:"model_error,omitempty"`
}

// HealthChecker pings the inference backend.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Stats gathers corpus counts and checks the model. Count failures
// propagate; a sick model is reported, not an error.
func (r *Retriever) Stats(ctx context.Context, health HealthChecker) (Stats, error) {
	var st Stats
	var err error

	if st.Books, err = r.store.CountBooks(ctx); err != nil {
		return st, err
	}
	if st.Embeddings, err = r.store.CountEmbeddings(ctx, nil); err != nil {
		return st, err
	}
	if st.Questions, err = r.store.CountQuestions(ctx); err != nil {
		return st, err
	}

	st.ModelHealthy = true
	if health != nil {
		if herr := health.Health(ctx); herr != nil {
			st.ModelHealthy = false
			st.ModelError = herr.Error()
		}
	}
	return st, nil
}
