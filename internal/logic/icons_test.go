package logic

import "testing"

func TestIconForCondition(t *testing.T) {
	tests := []struct {
		cond  Condition
		night bool
		want  Icon
	}{
		{200, false, IconThunder},
		{232, true, IconThunder},
		{301, false, IconDrizzle},
		{500, false, IconRain},
		{511, false, IconRainSleet},
		{522, true, IconRain},
		{600, false, IconSnow},
		{611, false, IconSleet},
		{615, false, IconRainSnow},
		{622, false, IconSnow},
		{701, false, IconFog},
		{741, true, IconFog},
		{781, false, IconWind},
		{800, false, IconClearDay},
		{800, true, IconClearNight},
		{801, false, IconPartlyCloudyDay},
		{802, true, IconPartlyCloudyNight},
		{803, false, IconCloudy},
		{804, true, IconCloudy},
		{903, false, IconCold},
		{904, false, IconHot},
		{905, false, IconWind},
		{906, false, IconSleet},
	}
	for _, tt := range tests {
		if got := IconForCondition(tt.cond, tt.night); got != tt.want {
			t.Errorf("IconForCondition(%d, %v): got %s, want %s", tt.cond, tt.night, got, tt.want)
		}
	}
}

func TestIconForConditionIsTotal(t *testing.T) {
	reserved := map[Icon]bool{
		IconLoading1:     true,
		IconLoading2:     true,
		IconLoading3:     true,
		IconNotAvailable: true,
		IconPhoneError:   true,
	}
	for c := Condition(-10); c < 1100; c++ {
		for _, night := range []bool{false, true} {
			icon := IconForCondition(c, night)
			if icon == "" {
				t.Fatalf("condition %d night=%v: empty icon", c, night)
			}
			if reserved[icon] {
				t.Fatalf("condition %d night=%v: got reserved icon %s", c, night, icon)
			}
		}
	}
}

func TestIconForConditionUnknownFallsBack(t *testing.T) {
	for _, c := range []Condition{0, 100, 950, -1} {
		if got := IconForCondition(c, false); got != IconCloudy {
			t.Errorf("condition %d: got %s, want %s", c, got, IconCloudy)
		}
	}
}

func TestLoadingFrame(t *testing.T) {
	want := map[int]Icon{0: IconLoading1, 1: IconLoading2, 2: IconLoading3, 3: IconLoading3}
	for step, icon := range want {
		if got := loadingFrame(step); got != icon {
			t.Errorf("step %d: got %s, want %s", step, got, icon)
		}
	}
}
