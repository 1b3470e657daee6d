package compare

import (
	"encoding/base64"
	"fmt"
	"math"

	"github.com/park285/cheese-chess/internal/msgcat"
)

// Result mirrors the comparison backend's JSON reply. Similarities are in [0,1].
type Result struct {
	OverallSimilarity    float64 `json:"overall_similarity"`
	ColorSimilarity      float64 `json:"color_similarity"`
	TextureSimilarity    float64 `json:"texture_similarity"`
	StructuralSimilarity float64 `json:"structural_similarity"`
	ShapeSimilarity      float64 `json:"shape_similarity,omitempty"`
	ProcessedImage1      string  `json:"processed_image1,omitempty"`
	ProcessedImage2      string  `json:"processed_image2,omitempty"`
	ProcessingTime       float64 `json:"processing_time,omitempty"`
	Message              string  `json:"message,omitempty"`
}

type Tier string

const (
	TierHigh      Tier = "high"
	TierModerate  Tier = "moderate"
	TierBasic     Tier = "basic"
	TierDifferent Tier = "different"
)

// Percent rounds a [0,1] score to a whole percentage.
func Percent(score float64) int {
	return int(math.Round(score * 100))
}

func (r *Result) Percent() int { return Percent(r.OverallSimilarity) }

func TierFor(percent int) Tier {
	switch {
	case percent >= 70:
		return TierHigh
	case percent >= 50:
		return TierModerate
	case percent >= 30:
		return TierBasic
	default:
		return TierDifferent
	}
}

func (r *Result) Tier() Tier { return TierFor(r.Percent()) }

// Conclusion renders the verdict line. A nil catalog uses the embedded messages.
func (r *Result) Conclusion(cat *msgcat.Catalog) string {
	if cat == nil {
		cat = msgcat.MustDefault()
	}
	pct := r.Percent()
	tier := r.Tier()
	return cat.Text("compare.conclusion."+string(tier), map[string]int{"Percent": pct}, fmt.Sprintf("%s (%d%%)", tier, pct))
}

// ProcessedImages decodes the optional base64 previews. Missing ones are nil.
func (r *Result) ProcessedImages() ([]byte, []byte, error) {
	a, err := decodeImage(r.ProcessedImage1)
	if err != nil {
		return nil, nil, fmt.Errorf("processed_image1: %w", err)
	}
	b, err := decodeImage(r.ProcessedImage2)
	if err != nil {
		return nil, nil, fmt.Errorf("processed_image2: %w", err)
	}
	return a, b, nil
}

func decodeImage(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s)
}

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Message string `json:"message"`
}
