package wx

import (
	"math"
	"strings"

	"github.com/jgrandin/wxpost/internal/common"
)

// PrecipType is the precipitation category derived from weather codes.
type PrecipType string

const (
	PrecipNone PrecipType = "none"
	PrecipRain PrecipType = "rain"
	PrecipSnow PrecipType = "snow"
)

// WMO code sets (Open-Meteo and other gridded providers).
var wmoSnowCodes = codeSet(56, 57, 66, 67, 71, 73, 75, 77, 85, 86)
var wmoRainCodes = codeSet(51, 53, 55, 61, 63, 65, 80, 81, 82, 95, 96, 99)

// WeatherAPI condition code sets.
var apiSnowCodes = codeSet(1066, 1069, 1072, 1114, 1117, 1210, 1213, 1216,
	1219, 1222, 1225, 1237, 1255, 1258, 1261, 1264, 1279, 1282)
var apiRainCodes = codeSet(1063, 1150, 1153, 1168, 1171, 1180, 1183, 1186,
	1189, 1192, 1195, 1198, 1201, 1240, 1243, 1246, 1273, 1276)
var apiStormCodes = codeSet(1087, 1273, 1276, 1279, 1282)

func codeSet(codes ...int) map[int]struct{} {
	m := make(map[int]struct{}, len(codes))
	for _, c := range codes {
		m[c] = struct{}{}
	}
	return m
}

func inSet(set map[int]struct{}, code *int) bool {
	if code == nil {
		return false
	}
	_, ok := set[*code]
	return ok
}

// ClassifyPrecip maps weather codes to a precipitation category. WMO
// codes win when present; the provider condition code is the fallback.
// Codes in neither set mean no precipitation.
func ClassifyPrecip(wmoCode, providerCode *int) PrecipType {
	if wmoCode != nil {
		switch {
		case inSet(wmoSnowCodes, wmoCode):
			return PrecipSnow
		case inSet(wmoRainCodes, wmoCode):
			return PrecipRain
		}
		return PrecipNone
	}
	switch {
	case inSet(apiSnowCodes, providerCode):
		return PrecipSnow
	case inSet(apiRainCodes, providerCode):
		return PrecipRain
	}
	return PrecipNone
}

// iconEntry is one row of the code-to-icon table. Day-dependent entries
// resolve differently after sunset.
type iconEntry struct {
	day   string
	night string
}

func (e iconEntry) resolve(isDay bool) string {
	if !isDay && e.night != "" {
		return e.night
	}
	return e.day
}

var wmoIcons = map[int]iconEntry{
	0:  {day: "☀️", night: "🌙"},
	1:  {day: "🌤️", night: "🌙"},
	2:  {day: "⛅", night: "☁️"},
	3:  {day: "☁️"},
	45: {day: "🌫️"},
	48: {day: "🌫️"},
	95: {day: "⛈️"},
	96: {day: "⛈️"},
	99: {day: "⛈️"},
}

// Icon resolves the headline icon for a WMO code and a day/night flag,
// falling back to the precipitation category when the code has no table
// entry.
func Icon(wmoCode *int, isDay bool, precip PrecipType) string {
	if wmoCode != nil {
		if e, ok := wmoIcons[*wmoCode]; ok {
			return e.resolve(isDay)
		}
	}
	switch precip {
	case PrecipSnow:
		return "❄️"
	case PrecipRain:
		return "🌧️"
	}
	if isDay {
		return "🌡️"
	}
	return "🌙"
}

// SkyPhrase buckets cloud cover into a short sky description, with a
// keyword fallback against the provider's free-text condition when the
// percentage is unknown. Precipitation overrides the bucket: snow is
// always Snow, rain becomes Storms when thunder is involved.
func SkyPhrase(cloudPct *float64, conditionText string, precip PrecipType, providerCode *int) string {
	hasThunder := common.HasAny(strings.ToLower(conditionText), "thunder", "t-storm", "tstorm") ||
		inSet(apiStormCodes, providerCode)

	switch precip {
	case PrecipSnow:
		return "Snow"
	case PrecipRain:
		if hasThunder {
			return "Storms"
		}
		return "Rain"
	}

	if cloudPct != nil {
		switch {
		case *cloudPct <= 25:
			return "Clear"
		case *cloudPct <= 50:
			return "Partly cloudy"
		case *cloudPct <= 75:
			return "Mostly cloudy"
		default:
			return "Cloudy"
		}
	}

	text := strings.ToLower(conditionText)
	if text == "" {
		return ""
	}
	switch {
	case common.HasAny(text, "sunny", "clear"):
		return "Clear"
	case common.HasAny(text, "partly"):
		return "Partly cloudy"
	case common.HasAny(text, "mostly", "broken"):
		return "Mostly cloudy"
	case common.HasAny(text, "fog", "mist", "haze"):
		return "Foggy"
	default:
		return "Cloudy"
	}
}

// FeelPhrase maps a Celsius temperature onto the nine-step comfort
// ladder used in the post headline.
func FeelPhrase(c *float64) string {
	if c == nil {
		return ""
	}
	switch {
	case *c <= -13:
		return "bitter cold"
	case *c <= -7:
		return "frigid"
	case *c <= -2:
		return "freezing"
	case *c <= 3:
		return "cold"
	case *c <= 9:
		return "chilly"
	case *c <= 15:
		return "cool"
	case *c <= 21:
		return "mild"
	case *c <= 28:
		return "warm"
	default:
		return "hot"
	}
}

// WindPhrase maps a gust speed in km/h onto a six-step descriptive
// ladder loosely following Beaufort groupings.
func WindPhrase(gustKph *float64) string {
	if gustKph == nil {
		return ""
	}
	switch {
	case *gustKph < 2:
		return "calm"
	case *gustKph < 20:
		return "light winds"
	case *gustKph < 29:
		return "moderate winds"
	case *gustKph < 39:
		return "fresh winds"
	case *gustKph < 64:
		return "strong winds"
	default:
		return "storm force winds"
	}
}

var ordinals = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE", "S",
	"SSW", "SW", "WSW", "W", "WNW", "NW", "NNW", "N",
}

// Ordinal converts a wind direction in degrees to its 16-point compass
// name. Out-of-range or missing directions come back as "-".
func Ordinal(deg *float64) string {
	if deg == nil {
		return "-"
	}
	idx := int(math.Round(*deg / 22.5))
	if idx < 0 || idx >= len(ordinals) {
		return "-"
	}
	return ordinals[idx]
}

// DefaultUVDivisor is the site calibration constant relating measured
// solar radiation to an approximate UV index. It is an empirical fit
// for this station, not a physical constant, and is configurable.
const DefaultUVDivisor = 95.0

// SolarToUV approximates a UV index from solar radiation in W/m² using
// a linear site calibration. Readings under 10W/m² report 0; the result
// is clamped to [0, 9].
func SolarToUV(wattsPerM2 *float64, divisor float64) int {
	if wattsPerM2 == nil || *wattsPerM2 < 10 {
		return 0
	}
	if divisor <= 0 {
		divisor = DefaultUVDivisor
	}
	uv := int(math.Round(*wattsPerM2 / divisor))
	if uv < 0 {
		uv = 0
	}
	if uv > 9 {
		uv = 9
	}
	return uv
}
