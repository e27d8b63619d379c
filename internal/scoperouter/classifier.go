package scoperouter

import (
	"context"
	"math"

	"cogmem/internal/types"
	"cogmem/internal/vectorindex"
)

// ClassifierThreshold is the confidence floor below which a candidate
// is routed to the user scope regardless of which group scored higher.
const ClassifierThreshold = 0.65

// Classification is the outcome of classifying one candidate string.
type Classification struct {
	Scope        types.Scope
	Confidence   float64
	ProjectScore float64
	UserScore    float64
	Warning      string
}

// Classifier decides project vs. user scope for a candidate string by
// averaging its cosine similarity against two exemplar groups, encoded
// once at construction time.
type Classifier struct {
	backend     vectorindex.Backend
	projectVecs [][]float32
	userVecs    [][]float32

	// Threshold is the confidence floor; configuration may override the
	// ClassifierThreshold default.
	Threshold float64
}

// NewClassifier encodes the canonical exemplar groups against backend.
func NewClassifier(ctx context.Context, backend vectorindex.Backend) (*Classifier, error) {
	projectVecs, err := backend.Encode(ctx, projectExemplars)
	if err != nil {
		return nil, err
	}
	userVecs, err := backend.Encode(ctx, userExemplars)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		backend:     backend,
		projectVecs: projectVecs,
		userVecs:    userVecs,
		Threshold:   ClassifierThreshold,
	}, nil
}

// Classify encodes text once and scores it against both groups.
func (c *Classifier) Classify(ctx context.Context, text string) (Classification, error) {
	vecs, err := c.backend.Encode(ctx, []string{text})
	if err != nil {
		return Classification{}, err
	}
	vec := vecs[0]

	projectScore := averageCosine(vec, c.projectVecs)
	userScore := averageCosine(vec, c.userVecs)

	winner := types.ScopeUser
	winnerScore := userScore
	if projectScore > userScore {
		winner = types.ScopeProject
		winnerScore = projectScore
	}

	total := projectScore + userScore
	confidence := 0.5
	if total > 0 {
		confidence = winnerScore / total
	}

	result := Classification{Scope: winner, Confidence: confidence, ProjectScore: projectScore, UserScore: userScore}
	if confidence < c.Threshold {
		result.Scope = types.ScopeUser
		result.Warning = "scope classification confidence below threshold; routed to user scope by default"
	}
	return result, nil
}

func averageCosine(vec []float32, group [][]float32) float64 {
	if len(group) == 0 {
		return 0
	}
	var sum float64
	for _, g := range group {
		sum += cosine(vec, g)
	}
	return sum / float64(len(group))
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return math.Max(dot, -1)
}
