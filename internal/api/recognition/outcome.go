package recognition

import (
	"FaceAttendance/internal/entity"
	"FaceAttendance/pkg/luxand"
)

// Classify applies the acceptance threshold to a provider search. A match
// is accepted only when its similarity is strictly above threshold.
func Classify(search luxand.SearchOutcome, threshold float64) entity.RecognitionOutcome {
	outcome := entity.RecognitionOutcome{
		FaceDetected: search.FaceDetected,
		Shape:        string(search.Shape),
		Message:      search.Message,
	}

	for _, c := range search.Candidates {
		outcome.Candidates = append(outcome.Candidates, entity.FaceMatch{
			IdentityCode: c.IdentityCode,
			Name:         c.Name,
			Similarity:   c.Similarity,
		})
	}

	if search.Box != nil {
		outcome.FaceBox = toBoundingBox(*search.Box)
	}

	if !search.FaceDetected {
		outcome.Kind = entity.OutcomeNoFace
		return outcome
	}

	best, ok := search.Best()
	if ok && best.Similarity > threshold {
		outcome.Kind = entity.OutcomeRecognized
		outcome.Best = &entity.FaceMatch{
			IdentityCode: best.IdentityCode,
			Name:         best.Name,
			Similarity:   best.Similarity,
		}
		if best.Box != nil {
			outcome.FaceBox = toBoundingBox(*best.Box)
		}
		return outcome
	}

	outcome.Kind = entity.OutcomeUnknownFace
	return outcome
}

func toBoundingBox(r luxand.Rectangle) *entity.BoundingBox {
	return &entity.BoundingBox{
		Left:   r.Left,
		Top:    r.Top,
		Right:  r.Right,
		Bottom: r.Bottom,
	}
}
