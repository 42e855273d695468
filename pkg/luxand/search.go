package luxand

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
)

// ResponseShape names the variant a search payload was decoded as.
type ResponseShape string

const (
	ShapeEmptyArray       ResponseShape = "empty_array"
	ShapeLegacyArray      ResponseShape = "legacy_array"
	ShapeProbabilityArray ResponseShape = "probability_array"
	ShapeNestedFaces      ResponseShape = "nested_faces"
	ShapeBoundingBoxOnly  ResponseShape = "bounding_box"
	ShapeFailure          ResponseShape = "failure"
	ShapeNoFaces          ResponseShape = "no_faces"
)

var errUnknownShape = errors.New("payload is neither a JSON array nor a JSON object")

type Rectangle struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Candidate is one provider match normalized across shapes.
type Candidate struct {
	IdentityCode string     `json:"identityCode"`
	Name         string     `json:"name"`
	Similarity   float64    `json:"similarity"`
	Box          *Rectangle `json:"box,omitempty"`
}

// SearchOutcome is the single internal view of a search response.
// Candidates are ordered by similarity, best first.
type SearchOutcome struct {
	Shape        ResponseShape
	FaceDetected bool
	Candidates   []Candidate
	Box          *Rectangle
	Message      string
}

func (o SearchOutcome) Best() (Candidate, bool) {
	if len(o.Candidates) == 0 {
		return Candidate{}, false
	}
	return o.Candidates[0], true
}

// LegacyArrayMatch is an element of the v1 /photo/search answer.
type LegacyArrayMatch struct {
	ID         flexibleID `json:"id"`
	Name       string     `json:"name"`
	Similarity *float64   `json:"similarity"`
}

// ProbabilityArrayMatch is an element of the array form of /photo/search/v2.
type ProbabilityArrayMatch struct {
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	Probability *float64   `json:"probability"`
	Rectangle   *Rectangle `json:"rectangle"`
}

// NestedFacesMatch is the object form of /photo/search/v2.
type NestedFacesMatch struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Faces   []nestedFace `json:"faces"`
	BBox    *Rectangle   `json:"bbox"`
}

type nestedFace struct {
	Status  string     `json:"status"`
	BBox    *Rectangle `json:"bbox"`
	Matches []struct {
		PersonID   flexibleID `json:"person_id"`
		Name       string     `json:"name"`
		Similarity float64    `json:"similarity"`
	} `json:"matches"`
}

// arrayElement carries every key either array variant may use, so the
// variant can be chosen after a single decode.
type arrayElement struct {
	ID          flexibleID `json:"id"`
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	Similarity  *float64   `json:"similarity"`
	Probability *float64   `json:"probability"`
	Rectangle   *Rectangle `json:"rectangle"`
}

type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("id is neither string nor number: %s", data)
	}
	*f = flexibleID(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// DecodeSearch parses a search payload into exactly one variant and
// unifies it. Anything it cannot classify is an UpstreamFormatError.
func DecodeSearch(body []byte) (SearchOutcome, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return SearchOutcome{}, &UpstreamFormatError{Operation: "face search", Err: errors.New("empty body")}
	}

	switch trimmed[0] {
	case '[':
		return decodeArray(trimmed)
	case '{':
		return decodeObject(trimmed)
	default:
		return SearchOutcome{}, &UpstreamFormatError{Operation: "face search", Err: errUnknownShape}
	}
}

func decodeArray(body []byte) (SearchOutcome, error) {
	var elements []arrayElement
	if err := json.Unmarshal(body, &elements); err != nil {
		return SearchOutcome{}, &UpstreamFormatError{Operation: "face search", Err: err}
	}

	if len(elements) == 0 {
		return SearchOutcome{Shape: ShapeEmptyArray}, nil
	}

	probability := false
	for _, el := range elements {
		if el.Probability != nil || el.UUID != "" {
			probability = true
			break
		}
	}

	if probability {
		matches := make([]ProbabilityArrayMatch, 0, len(elements))
		for _, el := range elements {
			matches = append(matches, ProbabilityArrayMatch{
				UUID:        el.UUID,
				Name:        el.Name,
				Probability: el.Probability,
				Rectangle:   el.Rectangle,
			})
		}
		return fromProbabilityArray(matches), nil
	}

	matches := make([]LegacyArrayMatch, 0, len(elements))
	for _, el := range elements {
		matches = append(matches, LegacyArrayMatch{
			ID:         el.ID,
			Name:       el.Name,
			Similarity: el.Similarity,
		})
	}
	return fromLegacyArray(matches), nil
}

func decodeObject(body []byte) (SearchOutcome, error) {
	var nested NestedFacesMatch
	if err := json.Unmarshal(body, &nested); err != nil {
		return SearchOutcome{}, &UpstreamFormatError{Operation: "face search", Err: err}
	}

	if nested.Status == "failure" {
		message := nested.Message
		if message == "" {
			message = "Luxand API reported failure"
		}
		return SearchOutcome{Shape: ShapeFailure, Message: message}, nil
	}

	if len(nested.Faces) == 0 {
		if nested.BBox != nil {
			return SearchOutcome{
				Shape:        ShapeBoundingBoxOnly,
				FaceDetected: true,
				Box:          nested.BBox,
				Message:      "Face detected but not recognized",
			}, nil
		}
		return SearchOutcome{Shape: ShapeNoFaces, Message: "No faces detected in the image"}, nil
	}

	return fromNestedFaces(nested), nil
}

func fromLegacyArray(matches []LegacyArrayMatch) SearchOutcome {
	out := SearchOutcome{Shape: ShapeLegacyArray, FaceDetected: true}
	for _, m := range matches {
		similarity := 0.0
		if m.Similarity != nil {
			similarity = *m.Similarity
		}
		out.Candidates = append(out.Candidates, Candidate{
			IdentityCode: string(m.ID),
			Name:         nameOr(m.Name, string(m.ID)),
			Similarity:   similarity,
		})
	}
	sortCandidates(out.Candidates)
	return out
}

func fromProbabilityArray(matches []ProbabilityArrayMatch) SearchOutcome {
	out := SearchOutcome{Shape: ShapeProbabilityArray, FaceDetected: true}
	for _, m := range matches {
		probability := 0.0
		if m.Probability != nil {
			probability = *m.Probability
		}
		out.Candidates = append(out.Candidates, Candidate{
			IdentityCode: m.UUID,
			Name:         nameOr(m.Name, m.UUID),
			Similarity:   probability,
			Box:          m.Rectangle,
		})
	}
	sortCandidates(out.Candidates)
	if best, ok := out.Best(); ok {
		out.Box = best.Box
	}
	return out
}

func fromNestedFaces(nested NestedFacesMatch) SearchOutcome {
	out := SearchOutcome{Shape: ShapeNestedFaces, FaceDetected: true, Box: nested.BBox}
	for _, face := range nested.Faces {
		if out.Box == nil {
			out.Box = face.BBox
		}
		if face.Status != "success" {
			continue
		}
		for _, m := range face.Matches {
			out.Candidates = append(out.Candidates, Candidate{
				IdentityCode: string(m.PersonID),
				Name:         nameOr(m.Name, string(m.PersonID)),
				Similarity:   m.Similarity,
				Box:          face.BBox,
			})
		}
	}
	sortCandidates(out.Candidates)
	return out
}

func sortCandidates(c []Candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].Similarity > c[j].Similarity
	})
}

func nameOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}

func (c *client) SearchFace(ctx context.Context, image []byte) (SearchOutcome, error) {
	body, err := c.doMultipart(ctx, "Luxand recognition", "/photo/search/v2", nil, formFile{
		field:    "photo",
		filename: "face.jpeg",
		data:     image,
	})
	if err != nil {
		return SearchOutcome{}, err
	}
	return DecodeSearch(body)
}

func (c *client) SearchFaceLegacy(ctx context.Context, image []byte) (SearchOutcome, error) {
	payload := map[string]any{
		"photo":     base64.StdEncoding.EncodeToString(image),
		"limit":     1,
		"threshold": 0.7,
	}
	body, err := c.doJSON(ctx, "Luxand recognition", http.MethodPost, "/photo/search", payload)
	if err != nil {
		return SearchOutcome{}, err
	}
	return DecodeSearch(body)
}
