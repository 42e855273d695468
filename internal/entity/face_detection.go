package entity

type OutcomeKind string

const (
	OutcomeRecognized  OutcomeKind = "recognized"
	OutcomeUnknownFace OutcomeKind = "unknown_face"
	OutcomeNoFace      OutcomeKind = "no_face"
)

type BoundingBox struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

type FaceMatch struct {
	IdentityCode string  `json:"identityCode"`
	Name         string  `json:"name"`
	Similarity   float64 `json:"similarity"`
}

// RecognitionOutcome is what a provider search means once the acceptance
// threshold has been applied.
type RecognitionOutcome struct {
	Kind         OutcomeKind
	FaceDetected bool
	Best         *FaceMatch
	Candidates   []FaceMatch
	FaceBox      *BoundingBox
	Shape        string
	Message      string
}

func (o RecognitionOutcome) Recognized() bool {
	return o.Kind == OutcomeRecognized
}

func (o RecognitionOutcome) CanRegister() bool {
	return o.FaceDetected && !o.Recognized()
}
