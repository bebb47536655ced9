// internal/models/models_test.go
package models

import "testing"

func TestVideoBaseName(t *testing.T) {
	cases := []struct {
		filePath string
		want     string
	}{
		{"uploads/videos/abc-123.mp4", "abc-123"},
		{"abc-123.webm", "abc-123"},
		{"uploads/videos/noext", "noext"},
	}
	for _, tc := range cases {
		v := Video{FilePath: tc.filePath}
		if got := v.BaseName(); got != tc.want {
			t.Errorf("BaseName(%q) = %q, want %q", tc.filePath, got, tc.want)
		}
	}
}

func TestJSONArrayRoundTrip(t *testing.T) {
	a := JSONArray{92.5, []interface{}{85.0}, "elbow_drop"}

	value, err := a.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	var back JSONArray
	if err := back.Scan(value); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(back) != 3 {
		t.Fatalf("Expected 3 elements, got %d", len(back))
	}
	if back[0] != 92.5 {
		t.Errorf("Expected 92.5, got %v", back[0])
	}
	nested, ok := back[1].([]interface{})
	if !ok || len(nested) != 1 || nested[0] != 85.0 {
		t.Errorf("Nested array not preserved: %v", back[1])
	}
}

func TestJSONArrayNil(t *testing.T) {
	var a JSONArray
	value, err := a.Value()
	if err != nil || value != nil {
		t.Errorf("Expected nil value for nil array, got %v err=%v", value, err)
	}

	var back JSONArray
	if err := back.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if back != nil {
		t.Errorf("Expected nil after scanning nil, got %v", back)
	}
}

func TestStringArrayRoundTrip(t *testing.T) {
	a := StringArray{"runs/a_1.mp4", "runs/a_2.mp4"}

	value, err := a.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}

	// Drivers may hand back []byte instead of string.
	var back StringArray
	if err := back.Scan([]byte(value.(string))); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(back) != 2 || back[0] != "runs/a_1.mp4" {
		t.Errorf("Round trip mismatch: %v", back)
	}
}

func TestScanRejectsUnsupportedType(t *testing.T) {
	var a JSONArray
	if err := a.Scan(42); err == nil {
		t.Error("Expected error scanning an int into JSONArray")
	}
	var s StringArray
	if err := s.Scan(42); err == nil {
		t.Error("Expected error scanning an int into StringArray")
	}
}

func TestValidHand(t *testing.T) {
	if !ValidHand(HandLeft) || !ValidHand(HandRight) {
		t.Error("Expected left and right to be valid")
	}
	if ValidHand("") || ValidHand("both") {
		t.Error("Expected empty and unknown hands to be invalid")
	}
}
