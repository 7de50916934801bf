package maintenance

import (
	"context"
	"testing"
	"time"

	"veridian-hq/callisto/pkg/config"
)

type countingSweeper struct {
	removed int
	calls   int
}

func (s *countingSweeper) Sweep() int {
	s.calls++
	return s.removed
}

func TestSchedulerStart(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid daily schedule",
			enabled:     true,
			schedule:    "0 3 * * *",
			wantRunning: true,
		},
		{
			name:        "valid hourly schedule",
			enabled:     true,
			schedule:    "0 * * * *",
			wantRunning: true,
		},
		{
			name:     "disabled",
			enabled:  false,
			schedule: "0 3 * * *",
		},
		{
			name:    "empty schedule",
			enabled: true,
		},
		{
			name:      "invalid schedule",
			enabled:   true,
			schedule:  "invalid cron",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewScheduler(&config.MaintenanceConfig{
				Enabled:       tt.enabled,
				SweepSchedule: tt.schedule,
			}, &countingSweeper{}, nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := scheduler.Start(ctx)
			if tt.wantError {
				if err == nil {
					t.Error("Start() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("Start() error = %v", err)
			}
			defer scheduler.Stop()

			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}
			if tt.wantRunning && scheduler.NextRun() == nil {
				t.Error("NextRun() should report the next scheduled time")
			}
		})
	}
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	scheduler := NewScheduler(&config.MaintenanceConfig{
		Enabled:       true,
		SweepSchedule: "0 3 * * *",
	}, &countingSweeper{}, nil)

	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	scheduler.Stop()
	scheduler.Stop()
	if scheduler.IsRunning() {
		t.Error("scheduler should not be running after Stop")
	}
}

func TestSchedulerStopsOnContextCancel(t *testing.T) {
	scheduler := NewScheduler(&config.MaintenanceConfig{
		Enabled:       true,
		SweepSchedule: "0 3 * * *",
	}, &countingSweeper{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.After(2 * time.Second)
	for scheduler.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("scheduler did not stop after context cancellation")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRunMaintenanceSweeps(t *testing.T) {
	sweeper := &countingSweeper{removed: 3}
	scheduler := NewScheduler(&config.MaintenanceConfig{
		Enabled:       true,
		SweepSchedule: "0 3 * * *",
	}, sweeper, nil)

	scheduler.runMaintenance(context.Background())
	if sweeper.calls != 1 {
		t.Errorf("Sweep() called %d times, want 1", sweeper.calls)
	}
}
