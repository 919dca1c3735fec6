package imu

import "math"

// Orientation is a unit quaternion in w, x, y, z order.
type Orientation [4]float64

// Identity is the orientation before any reading.
var Identity = Orientation{1, 0, 0, 0}

// Filter post-processes a new orientation given the last accepted one.
type Filter interface {
	Filter(next, last Orientation) Orientation
}

// FilterFunc is the func form of Filter.
type FilterFunc func(next, last Orientation) Orientation

// Filter implements Filter.
func (f FilterFunc) Filter(next, last Orientation) Orientation {
	return f(next, last)
}

// JumpFilter keeps the last value of each component which changed more
// than Threshold in one step.
type JumpFilter struct {
	Threshold float64
}

// Filter implements Filter.
func (f JumpFilter) Filter(next, last Orientation) Orientation {
	for i := range next {
		if math.Abs(next[i]-last[i]) > f.Threshold {
			next[i] = last[i]
		}
	}
	return next
}

// LowPassFilter blends Alpha of the new value into the last one.
type LowPassFilter struct {
	Alpha float64
}

// Filter implements Filter.
func (f LowPassFilter) Filter(next, last Orientation) Orientation {
	for i := range next {
		next[i] = last[i]*(1-f.Alpha) + next[i]*f.Alpha
	}
	return next
}

// Chain applies filters in order.
type Chain []Filter

// Filter implements Filter.
func (c Chain) Filter(next, last Orientation) Orientation {
	for _, f := range c {
		next = f.Filter(next, last)
	}
	return next
}

// DefaultFilter rejects jumps larger than 1 then applies a 0.2 low-pass.
func DefaultFilter() Filter {
	return Chain{JumpFilter{Threshold: 1}, LowPassFilter{Alpha: 0.2}}
}
