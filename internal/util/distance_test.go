package util

import (
	"math"
	"testing"
)

func TestGetDistanceFunc(t *testing.T) {
	for _, metric := range []DistanceMetric{L2Squared, Cosine, Dot} {
		if _, err := GetDistanceFunc(metric); err != nil {
			t.Errorf("GetDistanceFunc(%v) error = %v", metric, err)
		}
	}
	if _, err := GetDistanceFunc(DistanceMetric(99)); err == nil {
		t.Error("GetDistanceFunc(99) expected error")
	}
}

func TestL2SquaredDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"unit apart", []float32{1, 0, 0}, []float32{0, 1, 0}, 2},
		{"no sqrt", []float32{0, 0}, []float32{3, 4}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := L2SquaredDistance(tt.a, tt.b); got != tt.want {
				t.Errorf("L2SquaredDistance = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestCosineDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical direction", []float32{2, 0}, []float32{5, 0}, 0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"zero norm", []float32{0, 0}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineDistanceFunc(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("CosineDistanceFunc = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5, 0}
	b := []float32{2.1, 0.4, -0.5, 1}

	for _, metric := range []DistanceMetric{L2Squared, Cosine, Dot} {
		fn, err := GetDistanceFunc(metric)
		if err != nil {
			t.Fatalf("GetDistanceFunc(%v) error = %v", metric, err)
		}
		if fn(a, b) != fn(b, a) {
			t.Errorf("metric %v not symmetric: %g vs %g", metric, fn(a, b), fn(b, a))
		}
	}
}

func TestDistanceNonNegativity(t *testing.T) {
	a := []float32{0.3, -1.2, 4.5}
	b := []float32{2.1, 0.4, -0.5}

	if d := L2SquaredDistance(a, b); d < 0 {
		t.Errorf("L2 distance negative: %g", d)
	}
	if d := CosineDistanceFunc(a, b); d < 0 {
		t.Errorf("cosine distance negative: %g", d)
	}
}
