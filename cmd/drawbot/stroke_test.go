package main

import "testing"

func TestCircleStroke(t *testing.T) {
	stroke := circleStroke(100, 100, 50, 8)
	if len(stroke) != 16 {
		t.Fatalf("Expected 16 words for 8 points, got %d", len(stroke))
	}

	// First sample is at angle zero: (cx+r, cy)
	if stroke[0] != 150 || stroke[1] != 100 {
		t.Errorf("Expected first point (150, 100), got (%d, %d)", stroke[0], stroke[1])
	}

	// All samples stay on the bounding box of the circle
	for i := 0; i < len(stroke); i += 2 {
		x, y := stroke[i], stroke[i+1]
		if x < 50 || x > 150 || y < 50 || y > 150 {
			t.Errorf("Point %d (%d, %d) outside circle bounds", i/2, x, y)
		}
	}
}

func TestLissajousStroke(t *testing.T) {
	stroke := lissajousStroke(400, 300, 200, 60)
	if len(stroke) != 120 {
		t.Fatalf("Expected 120 words for 60 points, got %d", len(stroke))
	}

	for i := 0; i < len(stroke); i += 2 {
		x, y := stroke[i], stroke[i+1]
		if x < 200 || x > 600 || y < 100 || y > 500 {
			t.Errorf("Point %d (%d, %d) outside figure bounds", i/2, x, y)
		}
	}
}

func TestStrokeMinimumPoints(t *testing.T) {
	if got := len(circleStroke(0, 0, 10, 0)); got != 4 {
		t.Errorf("Expected degenerate request to clamp to 2 points, got %d words", got)
	}
}

func TestChunkStroke(t *testing.T) {
	stroke := circleStroke(100, 100, 50, 20) // 40 words
	chunks := chunkStroke(stroke, 8)         // 16 words per chunk
	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[0]) != 16 || len(chunks[1]) != 16 || len(chunks[2]) != 8 {
		t.Errorf("Unexpected chunk sizes: %d, %d, %d",
			len(chunks[0]), len(chunks[1]), len(chunks[2]))
	}

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if total != len(stroke) {
		t.Errorf("Chunks cover %d words, stroke has %d", total, len(stroke))
	}

	if chunks := chunkStroke(nil, 8); chunks != nil {
		t.Errorf("Expected no chunks for empty stroke, got %d", len(chunks))
	}
}
