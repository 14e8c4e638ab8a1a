package clock

import (
	"testing"
	"time"

	"github.com/sweeney/watchface/internal/logic"
)

func TestChanged(t *testing.T) {
	base := time.Date(2026, 1, 5, 9, 15, 30, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want logic.Units
	}{
		{"same second", base.Add(200 * time.Millisecond), 0},
		{"next second", base.Add(time.Second), logic.UnitSecond},
		{"next minute", time.Date(2026, 1, 5, 9, 16, 0, 0, time.UTC), logic.UnitMinute | logic.UnitSecond},
		{"next hour", time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC), logic.UnitHour | logic.UnitMinute | logic.UnitSecond},
		{"next day", time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), logic.UnitDay | logic.UnitHour | logic.UnitMinute | logic.UnitSecond},
		{"next month", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), logic.CadenceFull &^ logic.UnitYear},
		{"next year", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), logic.CadenceFull},
		{"exactly one hour later", base.Add(time.Hour), logic.UnitHour | logic.UnitMinute | logic.UnitSecond},
		{"exactly one day later", base.Add(24 * time.Hour), logic.UnitDay | logic.UnitHour | logic.UnitMinute | logic.UnitSecond},
	}
	for _, tt := range tests {
		if got := Changed(base, tt.now); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestObserveFirstSampleIsBaseline(t *testing.T) {
	s := NewSource(time.UTC)
	if _, ok := s.Observe(time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)); ok {
		t.Error("expected no tick on first sample")
	}
}

func TestObserveCoarseSkipsSeconds(t *testing.T) {
	s := NewSource(time.UTC)
	start := time.Date(2026, 1, 5, 9, 15, 57, 0, time.UTC)
	s.Observe(start)

	var ticks []logic.Tick
	for i := 1; i <= 5; i++ {
		if tick, ok := s.Observe(start.Add(time.Duration(i) * time.Second)); ok {
			ticks = append(ticks, tick)
		}
	}

	if len(ticks) != 1 {
		t.Fatalf("expected 1 tick, got %d", len(ticks))
	}
	if ticks[0].Time.Minute() != 16 || ticks[0].Time.Second() != 0 {
		t.Errorf("expected tick at 09:16:00, got %v", ticks[0].Time)
	}
	if !ticks[0].Changed.Has(logic.UnitMinute) {
		t.Errorf("expected minute bit, got %s", ticks[0].Changed)
	}
}

func TestObserveFullEverySecond(t *testing.T) {
	s := NewSource(time.UTC)
	s.Subscribe(logic.CadenceFull)
	start := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	s.Observe(start)

	count := 0
	for i := 1; i <= 5; i++ {
		if _, ok := s.Observe(start.Add(time.Duration(i) * time.Second)); ok {
			count++
		}
	}
	if count != 5 {
		t.Errorf("expected 5 ticks, got %d", count)
	}
}

func TestSubscribeReplaces(t *testing.T) {
	s := NewSource(time.UTC)
	if s.Subscribed() != logic.CadenceCoarse {
		t.Errorf("default: got %s, want coarse", s.Subscribed())
	}
	s.Subscribe(logic.CadenceFull)
	s.Subscribe(logic.CadenceFull)
	if s.Subscribed() != logic.CadenceFull {
		t.Errorf("got %s, want full", s.Subscribed())
	}
	s.Subscribe(logic.CadenceCoarse)
	if s.Subscribed() != logic.CadenceCoarse {
		t.Errorf("got %s, want coarse", s.Subscribed())
	}
}

func TestObserveConvertsLocation(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	s := NewSource(loc)
	s.Observe(time.Date(2026, 1, 5, 8, 59, 59, 0, time.UTC))

	tick, ok := s.Observe(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected a tick")
	}
	if tick.Time.Hour() != 10 {
		t.Errorf("expected local hour 10, got %d", tick.Time.Hour())
	}
	if s.Location() != loc {
		t.Error("expected configured location")
	}
}

func TestNewSourceDefaultsToLocal(t *testing.T) {
	if NewSource(nil).Location() != time.Local {
		t.Error("expected time.Local")
	}
}

func TestFull(t *testing.T) {
	s := NewSource(time.UTC)
	now := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	tick := s.Full(now)
	if tick.Changed != logic.CadenceFull {
		t.Errorf("got %s, want full", tick.Changed)
	}
	if !tick.Time.Equal(now) {
		t.Errorf("time: got %v, want %v", tick.Time, now)
	}
}
