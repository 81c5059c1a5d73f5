package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultDimension is the output dimension of the hash provider.
const DefaultDimension = 256

// HashProvider is a deterministic, fully offline Provider based on token
// feature hashing. It is the default when no provider is configured: vectors
// for texts sharing vocabulary land close together, which is enough for
// exact-ish retrieval and for tests, but it is not a semantic model.
type HashProvider struct {
	dim int
}

// NewHashProvider creates a hash provider with the given dimension.
// A dimension of 0 selects DefaultDimension.
func NewHashProvider(dim int) *HashProvider {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashProvider{dim: dim}
}

func (p *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vector := make([]float32, p.dim)
	for _, token := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()
		bucket := int(sum % uint64(p.dim))
		// The bit above the bucket decides the sign, spreading tokens over
		// both directions of each axis.
		if (sum>>32)&1 == 0 {
			vector[bucket]++
		} else {
			vector[bucket]--
		}
	}
	normalize(vector)
	return vector, nil
}

func (p *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := p.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (p *HashProvider) Dimension() int {
	return p.dim
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

func normalize(vector []float32) {
	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}
}
