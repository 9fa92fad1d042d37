package domain

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

const (
	AnnotationTypePoint    = "point"
	AnnotationTypeRect     = "rect"
	AnnotationTypeFreehand = "freehand"
)

type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Annotation is a positioned comment embedded in a revision's annotation
// list. The list lives as a JSON array on the revision row, not as its own
// table.
type Annotation struct {
	ID           string      `json:"id"`
	X            float64     `json:"x"`
	Y            float64     `json:"y"`
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	Type         string      `json:"annotation_type"`
	Comment      string      `json:"comment"`
	Author       string      `json:"author"`
	AuthorName   string      `json:"author_name"`
	Timestamp    string      `json:"timestamp"`
	RevisionName string      `json:"revision_name"`
	Path         []PathPoint `json:"path,omitempty"`
}

// InferAnnotationType applies the geometry rule: an explicit freehand with
// path data wins, nonzero width/height means rect, everything else is a
// point. A freehand request without path data falls back to geometry.
func InferAnnotationType(explicit string, width, height float64, path []PathPoint) string {
	if explicit == AnnotationTypeFreehand && len(path) > 0 {
		return AnnotationTypeFreehand
	}
	if explicit == AnnotationTypePoint || explicit == AnnotationTypeRect {
		return explicit
	}
	if width > 0 || height > 0 {
		return AnnotationTypeRect
	}
	return AnnotationTypePoint
}

// DecodeAnnotations parses the stored annotations column. Empty or missing
// content decodes to an empty list; anything that is not a JSON array is a
// hard error.
func DecodeAnnotations(raw datatypes.JSON) ([]Annotation, error) {
	if len(raw) == 0 {
		return []Annotation{}, nil
	}
	var shape interface{}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return nil, fmt.Errorf("annotations field contains invalid JSON: %w", err)
	}
	if shape == nil {
		return []Annotation{}, nil
	}
	if _, ok := shape.([]interface{}); !ok {
		return nil, fmt.Errorf("annotations must be a JSON array")
	}
	var out []Annotation
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("annotations field contains invalid JSON: %w", err)
	}
	if out == nil {
		out = []Annotation{}
	}
	return out, nil
}

func EncodeAnnotations(list []Annotation) (datatypes.JSON, error) {
	if list == nil {
		list = []Annotation{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
