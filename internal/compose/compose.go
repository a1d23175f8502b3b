package compose

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/jgrandin/wxpost/internal/enrich"
	"github.com/jgrandin/wxpost/internal/wx"
)

// MaxLen is the platform's hard post-length ceiling in characters
// (grapheme clusters, so an emoji counts once).
const MaxLen = 280

// Input is everything a post is composed from. Obs fields may be nil
// and Enrich may be the zero snapshot; every line degrades on its own.
type Input struct {
	Obs       wx.Observation
	Trend     wx.PressureTrend
	Enrich    enrich.Snapshot
	RainDayMm *float64

	Station   string
	FooterURL string
	UVDivisor float64
}

// A slot is one named line of the post template: a pure function from
// the input to an optional line. Empty results are dropped.
type slot struct {
	name   string
	render func(Input) string
}

var slots = []slot{
	{"headline", headline},
	{"temperature", temperature},
	{"humidity", humidity},
	{"wind", wind},
	{"pressure", pressure},
	{"precip", precip},
	{"solar", solar},
	{"sun", sun},
	{"moon", moon},
}

// Message renders every slot in order, drops empty lines, appends the
// footer after a blank separator, and truncates the result to MaxLen.
// Pure: no I/O, no clock reads.
func Message(in Input) string {
	var lines []string
	for _, s := range slots {
		if line := s.render(in); line != "" {
			lines = append(lines, line)
		}
	}

	if in.FooterURL != "" {
		// The blank line is a deliberate visual separator, not droppable.
		lines = append(lines, "", in.FooterURL)
	}

	return Truncate(strings.Join(lines, "\n"), MaxLen)
}

func headline(in Input) string {
	precipType := wx.ClassifyPrecip(in.Enrich.WMOCode, in.Enrich.ConditionCode)
	icon := wx.Icon(in.Enrich.WMOCode, in.Enrich.Day(), precipType)
	sky := wx.SkyPhrase(in.Enrich.CloudCoverPct, in.Enrich.ConditionText, precipType, in.Enrich.ConditionCode)
	if sky == "" {
		sky = "N/A"
	}
	if in.Station != "" {
		return fmt.Sprintf("%s %s: %s", icon, in.Station, sky)
	}
	return fmt.Sprintf("%s %s", icon, sky)
}

func temperature(in Input) string {
	c := wx.FToC(in.Obs.OutTempF)
	if c == nil {
		return "🌡️ Temp: N/A"
	}
	if feel := wx.FeelPhrase(c); feel != "" {
		return fmt.Sprintf("🌡️ Temp: %.1f°C (%s)", *c, feel)
	}
	return fmt.Sprintf("🌡️ Temp: %.1f°C", *c)
}

func humidity(in Input) string {
	dew := wx.FToC(in.Obs.DewpointF)
	hum := in.Obs.OutHumidity

	if dew == nil && hum == nil {
		return "💧 Dewpoint/Humidity: N/A"
	}

	dewStr := "N/A"
	if dew != nil {
		dewStr = fmt.Sprintf("%.1f°C", *dew)
	}
	humStr := "N/A"
	if hum != nil {
		humStr = fmt.Sprintf("%.0f%%", *hum)
	}
	return fmt.Sprintf("💧 Dewpoint/Humidity: %s / %s", dewStr, humStr)
}

func wind(in Input) string {
	speed := wx.MphToKmh(in.Obs.WindSpeedMph)
	if speed == nil {
		return "💨 Wind: N/A"
	}

	line := fmt.Sprintf("💨 Wind: %s at %.0fkm/h", wx.Ordinal(in.Obs.WindDirDeg), *speed)

	if gust := wx.MphToKmh(in.Obs.WindGustMph); gust != nil && *gust > *speed {
		if phrase := wx.WindPhrase(gust); phrase != "" {
			line += fmt.Sprintf(", gusts %.0fkm/h (%s)", *gust, phrase)
		} else {
			line += fmt.Sprintf(", gusts %.0fkm/h", *gust)
		}
	}
	return line
}

func pressure(in Input) string {
	arrow := "➡️"
	word := "steady"
	switch in.Trend.Direction {
	case wx.TrendRising:
		arrow, word = "🔼", "rising"
	case wx.TrendFalling:
		arrow, word = "🔽", "falling"
	}

	if in.Trend.ValueMb == nil {
		return arrow + " Pressure: N/A"
	}
	return fmt.Sprintf("%s Pressure: %.1fmb (%s)", arrow, *in.Trend.ValueMb, word)
}

func precip(in Input) string {
	if rate := in.Enrich.SnowRateCmH; rate != nil && *rate > 0 {
		line := fmt.Sprintf("❄️ Snow: %.1fcm/h", *rate)
		if total := in.Enrich.SnowDayCm; total != nil && *total > 0 {
			line += fmt.Sprintf(" (%.1fcm today)", *total)
		}
		return line
	}

	rate := wx.InToMm(in.Obs.RainRateInHr)
	raining := rate != nil && *rate > 0

	switch {
	case raining && in.RainDayMm != nil:
		return fmt.Sprintf("🌧️ Rain: %.1fmm/h (%.1fmm today)", *rate, *in.RainDayMm)
	case raining:
		return fmt.Sprintf("🌧️ Rain: %.1fmm/h", *rate)
	case in.RainDayMm != nil:
		return fmt.Sprintf("🌧️ Rain: %.1fmm today", *in.RainDayMm)
	}
	return ""
}

func solar(in Input) string {
	if in.Obs.RadiationWm2 == nil {
		return ""
	}
	uv := wx.SolarToUV(in.Obs.RadiationWm2, in.UVDivisor)
	return fmt.Sprintf("☀️ Solar: %.0fW/m² (UV %d)", *in.Obs.RadiationWm2, uv)
}

func sun(in Input) string {
	if in.Enrich.Sunrise == "" || in.Enrich.Sunset == "" {
		return ""
	}
	return fmt.Sprintf("🌅 %s / 🌇 %s", in.Enrich.Sunrise, in.Enrich.Sunset)
}

func moon(in Input) string {
	if in.Enrich.MoonPhase == "" {
		return ""
	}
	return "🌙 " + in.Enrich.MoonPhase
}

// Truncate shortens s to at most limit grapheme clusters, marking the
// cut with an ellipsis. The cut lands on a cluster boundary so a
// multi-byte emoji is never split.
func Truncate(s string, limit int) string {
	if uniseg.GraphemeClusterCount(s) <= limit {
		return s
	}

	keep := limit - 1
	end := 0
	count := 0

	gr := uniseg.NewGraphemes(s)
	for gr.Next() && count < keep {
		_, to := gr.Positions()
		end = to
		count++
	}

	return s[:end] + "…"
}
