package detect

import (
	"github.com/CodedGrimoire/text2sql-analytics/internal/config"
	"github.com/CodedGrimoire/text2sql-analytics/internal/profile"
	"github.com/CodedGrimoire/text2sql-analytics/internal/rawtable"
)

// Detection methods recorded on accepted candidates.
const (
	MethodValueOverlap = "value_overlap"
	MethodNameMatch    = "name_match"
)

// ForeignKey is one accepted reference candidate.
type ForeignKey struct {
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string

	Overlap    float64
	NameScore  float64
	Confidence float64
	Method     string
}

// ForeignKeys runs cross-table reference detection.
//
// For every source column that is not its own table's primary key, every
// other table's detected primary key is tested: the overlap ratio of the
// source's distinct non-null values against the target key's value set must
// meet the configured threshold, and the column name must pass the similarity
// heuristic. Confidence is the weighted combination of both signals. When
// several targets qualify for one source column, the highest confidence wins
// and ties fall to the stronger name score. Below-threshold candidates are
// dropped outright rather than reported as low-confidence guesses.
//
// Synthesized target keys are never tested: their values do not exist in the
// raw data, so no overlap is possible. Detection is deterministic for
// identical input.
func ForeignKeys(
	tables []rawtable.RawTable,
	profiles map[string][]profile.Profile,
	pks map[string]PrimaryKey,
	cfg config.Config,
) []ForeignKey {
	keySets := make(map[string]map[string]struct{}, len(tables))
	for _, t := range tables {
		pk := pks[t.Name]
		if pk.Synthesized {
			continue
		}
		keySets[t.Name] = profile.ValueSet(t.Column(pk.Column))
	}

	var out []ForeignKey
	for _, src := range tables {
		srcPK := pks[src.Name]
		for _, col := range src.Columns {
			if !srcPK.Synthesized && col.Name == srcPK.Column {
				continue
			}
			srcSet := profile.ValueSet(&col)
			if len(srcSet) == 0 {
				continue
			}

			var best *ForeignKey
			for _, tgt := range tables {
				tgtPK := pks[tgt.Name]
				keySet, ok := keySets[tgt.Name]
				if !ok || len(keySet) == 0 {
					continue
				}
				if tgt.Name == src.Name && col.Name == tgtPK.Column {
					continue
				}

				cand := score(src.Name, col.Name, tgt.Name, tgtPK.Column, srcSet, keySet, cfg)
				if cand == nil {
					continue
				}
				if best == nil || better(cand, best) {
					best = cand
				}
			}
			if best != nil {
				out = append(out, *best)
			}
		}
	}
	return out
}

// score evaluates one (source column, target key) pair, returning nil when
// either acceptance test fails.
func score(srcTable, srcCol, tgtTable, tgtCol string, srcSet, keySet map[string]struct{}, cfg config.Config) *ForeignKey {
	hits := 0
	for v := range srcSet {
		if _, ok := keySet[v]; ok {
			hits++
		}
	}
	overlap := float64(hits) / float64(len(srcSet))
	if overlap < cfg.FKOverlapThreshold {
		return nil
	}

	name := nameSimilarity(srcCol, tgtTable, tgtCol)
	if name < cfg.MinNameSimilarity {
		return nil
	}

	method := MethodValueOverlap
	if name >= 0.9 {
		method = MethodNameMatch
	}
	return &ForeignKey{
		SourceTable:  srcTable,
		SourceColumn: srcCol,
		TargetTable:  tgtTable,
		TargetColumn: tgtCol,
		Overlap:      overlap,
		NameScore:    name,
		Confidence:   cfg.FKOverlapWeight*overlap + cfg.FKNameWeight*name,
		Method:       method,
	}
}

// better orders competing candidates for the same source column: confidence,
// then name score, then target name for a stable final tie-break.
func better(a, b *ForeignKey) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.NameScore != b.NameScore {
		return a.NameScore > b.NameScore
	}
	return a.TargetTable < b.TargetTable
}
