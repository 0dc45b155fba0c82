package availability

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"medibook/pkg/model"
)

// 2026-06-01 is a Monday.
var monday = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func window(day, start, end string, duration int) model.ScheduleWindow {
	return model.ScheduleWindow{
		Day:                 day,
		StartTime:           start,
		EndTime:             end,
		SlotDurationMinutes: duration,
	}
}

func TestResolve_MorningClinic(t *testing.T) {
	windows := []model.ScheduleWindow{window("Monday", "09:00", "13:00", 30)}

	got, err := Resolve(windows, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolve_LastSlotMustFitFully(t *testing.T) {
	windows := []model.ScheduleWindow{window("Monday", "09:00", "10:00", 30)}

	got, err := Resolve(windows, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v (10:00 would not leave room for a full slot)", got, want)
	}
}

func TestResolve_RemainderDropped(t *testing.T) {
	windows := []model.ScheduleWindow{window("Monday", "09:00", "10:10", 30)}

	got, err := Resolve(windows, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v (10:00+30min overshoots 10:10)", got, want)
	}
}

func TestResolve_EmptyDay(t *testing.T) {
	windows := []model.ScheduleWindow{window("Tuesday", "09:00", "13:00", 30)}

	got, err := Resolve(windows, monday)
	if err != nil {
		t.Fatalf("a day without windows is not an error, got: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no slots, got %v", got)
	}
}

func TestResolve_NoWindowsAtAll(t *testing.T) {
	got, err := Resolve(nil, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no slots, got %v", got)
	}
}

func TestResolve_StartNotBeforeEnd(t *testing.T) {
	tests := []struct {
		name   string
		window model.ScheduleWindow
	}{
		{"start equals end", window("Monday", "09:00", "09:00", 30)},
		{"start after end", window("Monday", "14:00", "09:00", 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve([]model.ScheduleWindow{tt.window}, monday)
			if err != nil {
				t.Fatalf("an inverted window yields zero slots, not an error, got: %v", err)
			}
			if len(got) != 0 {
				t.Errorf("expected no slots, got %v", got)
			}
		})
	}
}

func TestResolve_MultipleWindowsConcatenatedInOrder(t *testing.T) {
	windows := []model.ScheduleWindow{
		window("Monday", "16:00", "17:00", 30),
		window("Tuesday", "09:00", "10:00", 15),
		window("Monday", "09:00", "10:00", 30),
	}

	got, err := Resolve(windows, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Declaration order wins: the evening window was listed first, so its
	// slots come first even though they are later in the day.
	want := []string{"16:00", "16:30", "09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	windows := []model.ScheduleWindow{
		window("Monday", "09:00", "12:00", 20),
		window("Monday", "14:00", "16:30", 45),
	}

	first, err := Resolve(windows, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := Resolve(windows, monday)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("iteration %d: Resolve() = %v, want %v", i, again, first)
		}
	}
}

func TestResolve_InvalidWindows(t *testing.T) {
	tests := []struct {
		name   string
		window model.ScheduleWindow
	}{
		{"non-numeric start", window("Monday", "nine", "13:00", 30)},
		{"missing zero padding", window("Monday", "9:00", "13:00", 30)},
		{"hours out of range", window("Monday", "24:00", "25:00", 30)},
		{"minutes out of range", window("Monday", "09:61", "13:00", 30)},
		{"malformed end", window("Monday", "09:00", "13h00", 30)},
		{"zero duration", window("Monday", "09:00", "13:00", 0)},
		{"negative duration", window("Monday", "09:00", "13:00", -15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve([]model.ScheduleWindow{tt.window}, monday)
			if !errors.Is(err, ErrInvalidWindow) {
				t.Errorf("expected ErrInvalidWindow, got %v", err)
			}
		})
	}
}

func TestResolve_InvalidWindowOnOtherDayIgnored(t *testing.T) {
	// Only windows selected for the queried weekday are interpreted.
	windows := []model.ScheduleWindow{
		window("Friday", "garbage", "13:00", 30),
		window("Monday", "10:00", "11:00", 60),
	}

	got, err := Resolve(windows, monday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"10:00"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}
