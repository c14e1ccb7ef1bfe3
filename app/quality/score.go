package quality

import (
	"strings"
)

// SemanticConsistency returns the fraction of expected keywords present in
// the text. With no keywords configured the score is neutral (0.5); empty
// text scores zero.
func SemanticConsistency(text string, keywords []string) float64 {
	if text == "" {
		return 0.0
	}
	if len(keywords) == 0 {
		return 0.5
	}

	lower := strings.ToLower(text)

	found := 0
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(lower, keyword) {
			found++
		}
	}

	return float64(found) / float64(len(keywords))
}

// Score computes the combined quality score:
//
//	0.25*http + 0.25*content + 0.30*semantic + 0.20*(1-outlier) - 0.20*duplicate
//
// where the http component is 1.0/0.5/0.0 for reachable/unknown/unreachable.
// The result is clamped to [0,1].
func Score(httpOK *bool, hasContent, duplicate bool, semanticConsistency, outlierScore float64) float64 {
	httpComponent := 0.5
	if httpOK != nil {
		if *httpOK {
			httpComponent = 1.0
		} else {
			httpComponent = 0.0
		}
	}

	contentComponent := 0.0
	if hasContent {
		contentComponent = 1.0
	}

	score := 0.25*httpComponent +
		0.25*contentComponent +
		0.30*semanticConsistency +
		0.20*(1.0-outlierScore)

	if duplicate {
		score -= 0.20
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
