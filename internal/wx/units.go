package wx

// Unit conversions from the station's native US units to metric display
// units. All of them propagate nil so that a missing sensor reading stays
// missing instead of turning into a bogus zero.

// FToC converts degrees Fahrenheit to Celsius.
func FToC(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := (*f - 32) * 5 / 9
	return &c
}

// MphToKmh converts miles per hour to kilometres per hour.
func MphToKmh(mph *float64) *float64 {
	if mph == nil {
		return nil
	}
	v := *mph * 1.60934
	return &v
}

// InHgToMb converts inches of mercury to millibars.
func InHgToMb(inHg *float64) *float64 {
	if inHg == nil {
		return nil
	}
	v := *inHg * 33.8639
	return &v
}

// InToMm converts inches to millimetres. Works for depths (rain totals)
// and rates (in/hr to mm/hr) alike.
func InToMm(in *float64) *float64 {
	if in == nil {
		return nil
	}
	v := *in * 25.4
	return &v
}
