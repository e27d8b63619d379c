// Package sector implements cognitive-category classification of memory
// content: pattern-weighted scoring that yields a primary sector,
// secondary sectors, a confidence, and the decay-lambda that sector
// implies.
package sector

import (
	"regexp"
	"strings"

	"cogmem/internal/types"
)

// rule bundles a sector's scoring weight, its default per-day decay
// rate, and the regexes it is detected by.
type rule struct {
	sector   types.Sector
	weight   float64
	lambda   float64
	patterns []*regexp.Regexp
}

var rules = []rule{
	{
		sector: types.SectorEmotional,
		weight: 1.3,
		lambda: 0.020,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(feel|feeling|felt|happy|sad|angry|anxious|excited|frustrated|worried|love|hate|scared|proud|grateful|overwhelmed)\b`),
			regexp.MustCompile(`(?i)\b(amazing|terrible|wonderful|awful|incredible|devastating|thrilled|furious)\b`),
			regexp.MustCompile(`!{1,}`),
		},
	},
	{
		sector: types.SectorEpisodic,
		weight: 1.2,
		lambda: 0.015,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(yesterday|today|tomorrow|last week|last month|this morning|tonight|earlier|ago)\b`),
			regexp.MustCompile(`(?i)\b(went|saw|met|visited|attended|arrived|happened|occurred|experienced)\b`),
			regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`),
			regexp.MustCompile(`\b([01]?\d|2[0-3]):[0-5]\d\b`),
		},
	},
	{
		sector: types.SectorProcedural,
		weight: 1.1,
		lambda: 0.008,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(how to|step \d|first,?|then,?|next,?|finally,?|install|configure|set up|run|execute)\b`),
			regexp.MustCompile(`(?i)\b(click|press|type|enter|select|navigate|open|close)\b`),
			regexp.MustCompile(`(?i)\b(procedure|process|workflow|instructions|tutorial|guide)\b`),
		},
	},
	{
		sector: types.SectorSemantic,
		weight: 1.0,
		lambda: 0.005,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(is a|means|refers to|defined as|known as|also called)\b`),
			regexp.MustCompile(`(?i)\b(concept|theory|principle|definition|fact|language|science|mathematics|history)\b`),
			regexp.MustCompile(`(?i)\b(programming language|algorithm|framework|library)\b`),
		},
	},
	{
		sector: types.SectorReflective,
		weight: 0.8,
		lambda: 0.001,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(realize[sd]?|reflecting|in hindsight|looking back|lesson learned|i learned|pattern|connects|insight)\b`),
			regexp.MustCompile(`(?i)\b(introspect|self[- ]aware|meta-cognit|underlying reason|root cause)\b`),
		},
	},
}

// penaltyMatrix[query][memory] gives the cross-sector relevance
// penalty applied when a query classified into one sector retrieves a
// memory classified into another. Missing entries default to 0.3.
var penaltyMatrix = map[types.Sector]map[types.Sector]float64{
	types.SectorSemantic: {
		types.SectorEmotional: 0.4, types.SectorEpisodic: 0.6, types.SectorProcedural: 0.8,
		types.SectorSemantic: 1.0, types.SectorReflective: 0.7,
	},
	types.SectorProcedural: {
		types.SectorEmotional: 0.3, types.SectorEpisodic: 0.6, types.SectorProcedural: 1.0,
		types.SectorSemantic: 0.8, types.SectorReflective: 0.6,
	},
	types.SectorEpisodic: {
		types.SectorEmotional: 0.7, types.SectorEpisodic: 1.0, types.SectorProcedural: 0.6,
		types.SectorSemantic: 0.6, types.SectorReflective: 0.8,
	},
	types.SectorReflective: {
		types.SectorEmotional: 0.6, types.SectorEpisodic: 0.8, types.SectorProcedural: 0.6,
		types.SectorSemantic: 0.7, types.SectorReflective: 1.0,
	},
	types.SectorEmotional: {
		types.SectorEmotional: 1.0, types.SectorEpisodic: 0.7, types.SectorProcedural: 0.3,
		types.SectorSemantic: 0.4, types.SectorReflective: 0.6,
	},
}

const defaultPenalty = 0.3

// Result is the outcome of classifying a piece of text.
type Result struct {
	Primary          types.Sector
	Additional       []types.Sector
	Confidence       float64
	DecayLambda      float64
	ExplicitOverride bool
}

// LambdaFor returns the sector-specific decay rate.
func LambdaFor(s types.Sector) float64 {
	for _, r := range rules {
		if r.sector == s {
			return r.lambda
		}
	}
	return 0.02
}

// Classify scores text against every sector's pattern family. If
// explicitSector is non-empty and valid it is accepted unconditionally
// with confidence 1, overriding pattern matching.
func Classify(text string, explicitSector types.Sector) Result {
	if explicitSector != "" && explicitSector.Valid() {
		return Result{
			Primary:          explicitSector,
			Confidence:       1.0,
			DecayLambda:      LambdaFor(explicitSector),
			ExplicitOverride: true,
		}
	}

	lower := strings.ToLower(text)
	scores := make(map[types.Sector]float64, len(rules))
	for _, r := range rules {
		count := 0
		for _, p := range r.patterns {
			count += len(p.FindAllStringIndex(lower, -1))
		}
		scores[r.sector] = float64(count) * r.weight
	}

	ordered := make([]scoredSector, 0, len(scores))
	for _, r := range rules {
		ordered = append(ordered, scoredSector{r.sector, scores[r.sector]})
	}
	sortDescending(ordered)

	if ordered[0].score == 0 {
		return Result{
			Primary:     types.SectorSemantic,
			Confidence:  0.2,
			DecayLambda: LambdaFor(types.SectorSemantic),
		}
	}

	primary := ordered[0].sector
	primaryScore := ordered[0].score
	secondScore := 0.0
	if len(ordered) > 1 {
		secondScore = ordered[1].score
	}

	additionalThreshold := 1.0
	if t := 0.3 * primaryScore; t > additionalThreshold {
		additionalThreshold = t
	}

	var additional []types.Sector
	for _, s := range ordered {
		if s.sector == primary {
			continue
		}
		if s.score > 0 && s.score >= additionalThreshold {
			additional = append(additional, s.sector)
		}
	}

	confidence := primaryScore / (primaryScore + secondScore + 1)
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		Primary:     primary,
		Additional:  additional,
		Confidence:  confidence,
		DecayLambda: LambdaFor(primary),
	}
}

type scoredSector struct {
	sector types.Sector
	score  float64
}

func sortDescending(s []scoredSector) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].score > s[j-1].score; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Penalty returns the cross-sector relevance penalty for a query
// classified into querySector retrieving a memory classified into
// memorySector.
func Penalty(querySector, memorySector types.Sector) float64 {
	row, ok := penaltyMatrix[querySector]
	if !ok {
		return defaultPenalty
	}
	p, ok := row[memorySector]
	if !ok {
		return defaultPenalty
	}
	return p
}
