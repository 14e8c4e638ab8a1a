package logic

// IconForCondition maps a condition id to a glyph. Every input yields an
// icon; ids outside the known groups fall back to IconCloudy.
func IconForCondition(c Condition, night bool) Icon {
	switch {
	case c >= 200 && c < 300:
		return IconThunder
	case c >= 300 && c < 400:
		return IconDrizzle
	case c == 511:
		return IconRainSleet
	case c >= 500 && c < 600:
		return IconRain
	case c == 611 || c == 612 || c == 613:
		return IconSleet
	case c == 615 || c == 616:
		return IconRainSnow
	case c >= 600 && c < 700:
		return IconSnow
	case c == 771 || c == 781:
		return IconWind
	case c >= 700 && c < 800:
		return IconFog
	case c == 800:
		if night {
			return IconClearNight
		}
		return IconClearDay
	case c == 801 || c == 802:
		if night {
			return IconPartlyCloudyNight
		}
		return IconPartlyCloudyDay
	case c == 803 || c == 804:
		return IconCloudy
	case c == 900 || c == 901 || c == 902 || c == 905:
		return IconWind
	case c == 903:
		return IconCold
	case c == 904:
		return IconHot
	case c == 906:
		return IconSleet
	default:
		return IconCloudy
	}
}

// loadingFrame returns the loading glyph for an animation step.
func loadingFrame(step int) Icon {
	switch {
	case step <= 0:
		return IconLoading1
	case step == 1:
		return IconLoading2
	default:
		return IconLoading3
	}
}
