package main

import "math"

// A stroke is a flat list of int16 words, alternating x and y, sized to
// travel directly inside a binary position frame.

// circleStroke samples a circle of the given radius around (cx, cy).
func circleStroke(cx, cy, radius, points int) []int16 {
	if points < 2 {
		points = 2
	}
	stroke := make([]int16, 0, points*2)
	for i := 0; i < points; i++ {
		angle := 2 * math.Pi * float64(i) / float64(points)
		x := float64(cx) + float64(radius)*math.Cos(angle)
		y := float64(cy) + float64(radius)*math.Sin(angle)
		stroke = append(stroke, int16(math.Round(x)), int16(math.Round(y)))
	}
	return stroke
}

// lissajousStroke samples a 3:2 lissajous figure inside a box of the
// given half-extent around (cx, cy). It produces a visually obvious
// path, which makes eyeballing multi-client forwarding easy.
func lissajousStroke(cx, cy, extent, points int) []int16 {
	if points < 2 {
		points = 2
	}
	stroke := make([]int16, 0, points*2)
	for i := 0; i < points; i++ {
		t := 2 * math.Pi * float64(i) / float64(points)
		x := float64(cx) + float64(extent)*math.Sin(3*t)
		y := float64(cy) + float64(extent)*math.Sin(2*t)
		stroke = append(stroke, int16(math.Round(x)), int16(math.Round(y)))
	}
	return stroke
}

// chunkStroke splits a stroke into frames of at most maxPoints
// coordinate pairs each, so a long path becomes several small frames
// the way an interactive client would emit them.
func chunkStroke(stroke []int16, maxPoints int) [][]int16 {
	if maxPoints < 1 {
		maxPoints = 1
	}
	maxWords := maxPoints * 2
	var chunks [][]int16
	for len(stroke) > 0 {
		n := maxWords
		if n > len(stroke) {
			n = len(stroke)
		}
		chunks = append(chunks, stroke[:n])
		stroke = stroke[n:]
	}
	return chunks
}
