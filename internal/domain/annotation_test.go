package domain

import (
	"testing"

	"gorm.io/datatypes"
)

func TestInferAnnotationType(t *testing.T) {
	cases := []struct {
		name     string
		explicit string
		width    float64
		height   float64
		path     []PathPoint
		want     string
	}{
		{name: "zero geometry is a point", want: AnnotationTypePoint},
		{name: "nonzero width is a rect", width: 5, want: AnnotationTypeRect},
		{name: "nonzero height is a rect", height: 3, want: AnnotationTypeRect},
		{name: "explicit freehand with path", explicit: AnnotationTypeFreehand, path: []PathPoint{{X: 1, Y: 2}}, want: AnnotationTypeFreehand},
		{name: "freehand without path falls back to geometry", explicit: AnnotationTypeFreehand, want: AnnotationTypePoint},
		{name: "freehand without path but with size", explicit: AnnotationTypeFreehand, width: 2, want: AnnotationTypeRect},
		{name: "explicit point wins over geometry", explicit: AnnotationTypePoint, width: 9, want: AnnotationTypePoint},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := InferAnnotationType(tc.explicit, tc.width, tc.height, tc.path)
			if got != tc.want {
				t.Fatalf("InferAnnotationType: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestDecodeAnnotationsEmpty(t *testing.T) {
	for _, raw := range []datatypes.JSON{nil, datatypes.JSON(""), datatypes.JSON("null")} {
		list, err := DecodeAnnotations(raw)
		if err != nil {
			t.Fatalf("DecodeAnnotations(%q): %v", string(raw), err)
		}
		if len(list) != 0 {
			t.Fatalf("DecodeAnnotations(%q): want empty list, got %d", string(raw), len(list))
		}
	}
}

func TestDecodeAnnotationsRejectsNonList(t *testing.T) {
	if _, err := DecodeAnnotations(datatypes.JSON(`{"x":1}`)); err == nil {
		t.Fatal("DecodeAnnotations: expected error for JSON object")
	}
	if _, err := DecodeAnnotations(datatypes.JSON(`not json`)); err == nil {
		t.Fatal("DecodeAnnotations: expected error for malformed JSON")
	}
}

func TestAnnotationsRoundTrip(t *testing.T) {
	in := []Annotation{
		{ID: "a1", X: 1, Y: 2, Type: AnnotationTypePoint, Comment: "first", Author: "u1", Timestamp: "2026-01-02T03:04:05Z"},
		{ID: "a2", X: 3, Y: 4, Width: 10, Height: 20, Type: AnnotationTypeRect, Comment: "second"},
		{ID: "a3", X: 0, Y: 0, Type: AnnotationTypeFreehand, Comment: "third", Path: []PathPoint{{X: 1, Y: 1}, {X: 2, Y: 2}}},
	}
	raw, err := EncodeAnnotations(in)
	if err != nil {
		t.Fatalf("EncodeAnnotations: %v", err)
	}
	out, err := DecodeAnnotations(raw)
	if err != nil {
		t.Fatalf("DecodeAnnotations: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip length: want=%d got=%d", len(in), len(out))
	}
	for i := range in {
		if out[i].ID != in[i].ID || out[i].Comment != in[i].Comment || out[i].Type != in[i].Type {
			t.Fatalf("round trip mismatch at %d: want=%+v got=%+v", i, in[i], out[i])
		}
		if len(out[i].Path) != len(in[i].Path) {
			t.Fatalf("round trip path length at %d: want=%d got=%d", i, len(in[i].Path), len(out[i].Path))
		}
	}
}
