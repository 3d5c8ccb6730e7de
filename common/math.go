package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Wrap360 folds deg into [0, 360).
func Wrap360(deg float64) float64 {
	w := math.Mod(deg, 360)
	if w < 0 {
		w += 360
	}
	if w >= 360 {
		w = 0
	}
	return w
}

// AngleDelta returns the absolute difference between two angles in degrees,
// taken modulo 360, in the range [0, 180].
func AngleDelta(a, b float64) float64 {
	d := Wrap360(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
