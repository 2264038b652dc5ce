package utils

import "math"

// Fl is the floating point type used for every layout coordinate.
type Fl = float32

func MinF(x, y Fl) Fl {
	if x < y {
		return x
	}
	return y
}

func MaxF(x, y Fl) Fl {
	if x > y {
		return x
	}
	return y
}

// ClampPositive returns 0 for negative (or NaN) values.
func ClampPositive(x Fl) Fl {
	if !(x > 0) {
		return 0
	}
	return x
}

func Maxs(values ...Fl) Fl {
	max := values[0]
	for _, w := range values {
		if w > max {
			max = w
		}
	}
	return max
}

func Floor(x Fl) Fl {
	return Fl(math.Floor(float64(x)))
}

func Ceil(x Fl) Fl {
	return Fl(math.Ceil(float64(x)))
}

// RoundPrec rounds f with n digits precision
func RoundPrec(f Fl, n int) Fl {
	n10 := math.Pow10(n)
	return Fl(math.Round(float64(f)*n10) / n10)
}

// Hypot returns SQRT(a^2 + b^2)
func Hypot(a, b Fl) Fl {
	return Fl(math.Hypot(float64(a), float64(b)))
}
