package embedding

import (
	"context"
	"math"
)

// Task types hint the provider what the embedding is used for. Providers
// that don't distinguish (Ollama, Jina, OpenAI) ignore them.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Provider maps text to a fixed-dimension float vector. Stateless per call.
type Provider interface {
	Embed(ctx context.Context, text string, taskType string) ([]float32, error)
	Model() string
}

// Normalize scales a vector to unit length in place and returns it.
// Cosine similarity via inner product requires normalized vectors.
func Normalize(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude == 0 {
		return vec
	}
	for i, v := range vec {
		vec[i] = float32(float64(v) / magnitude)
	}
	return vec
}
