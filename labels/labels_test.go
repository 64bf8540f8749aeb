package labels

import (
	"errors"
	"testing"
)

func TestLabelTable(t *testing.T) {
	if NumLabels != 62 {
		t.Fatalf("Expected 62 labels, got %d", NumLabels)
	}

	cases := map[string]Label{
		"Hp_0":                 0,
		"Ks_2":                 10,
		"Mast_Sign_Y_Triangle": 13,
		"Ne_7b":                26,
		"Ra_10":                31,
		"Zs_Off":               44,
		"Ride_Indicator_2":     54,
		"Traffic_Light":        61,
	}
	for name, want := range cases {
		got, err := ParseLabel(name)
		if err != nil {
			t.Fatalf("ParseLabel(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseLabel(%q) = %d, want %d", name, got, want)
		}
		if got.String() != name {
			t.Errorf("Label(%d).String() = %q, want %q", got, got.String(), name)
		}
	}
}

func TestParseLabelUnknown(t *testing.T) {
	_, err := ParseLabel("Hp_9")
	if !errors.Is(err, ErrUnknownLabel) {
		t.Errorf("Expected ErrUnknownLabel, got %v", err)
	}
}

func TestConditions(t *testing.T) {
	if NumWeather != 6 || NumLight != 4 {
		t.Fatalf("Unexpected condition counts: weather %d, light %d", NumWeather, NumLight)
	}

	w, err := ParseWeather("foggy")
	if err != nil || w != Foggy || int(w) != 5 {
		t.Errorf("ParseWeather(foggy) = %v, %v", w, err)
	}
	l, err := ParseLight("Twilight")
	if err != nil || l != Twilight || int(l) != 2 {
		t.Errorf("ParseLight(Twilight) = %v, %v", l, err)
	}
	if _, err := ParseWeather("Hail"); !errors.Is(err, ErrUnknownWeather) {
		t.Errorf("Expected ErrUnknownWeather, got %v", err)
	}
	if _, err := ParseLight("Noon"); !errors.Is(err, ErrUnknownLight) {
		t.Errorf("Expected ErrUnknownLight, got %v", err)
	}
}
