package inactivity

import (
	"testing"

	"github.com/lifevault/lifevault/internal/model"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	const (
		period = 180
		grace  = 14
	)

	tests := []struct {
		name       string
		days       int
		wantAction Action
		wantTier   model.WarningTier
	}{
		{"well below any checkpoint", 10, ActionNone, model.TierNone},
		{"day before half-way", 89, ActionNone, model.TierNone},
		{"half-way checkpoint", 90, ActionWarn, model.TierFiftyPercent},
		{"day after half-way", 91, ActionNone, model.TierNone},
		{"three-quarter checkpoint", 135, ActionWarn, model.TierSeventyFivePercent},
		{"day after three-quarter", 136, ActionNone, model.TierNone},
		{"final week start", 173, ActionWarn, model.TierFinalWeek},
		{"mid final week", 175, ActionWarn, model.TierFinalWeek},
		{"last day before period", 179, ActionWarn, model.TierFinalWeek},
		{"grace day zero", 180, ActionWarn, model.TierGracePeriod},
		{"grace odd day is quiet", 181, ActionNone, model.TierNone},
		{"grace even day", 182, ActionWarn, model.TierGracePeriod},
		{"grace odd day again", 183, ActionNone, model.TierNone},
		{"last grace even day", 192, ActionWarn, model.TierGracePeriod},
		{"grace expired", 194, ActionDisclose, model.TierNone},
		{"long past grace", 250, ActionDisclose, model.TierNone},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Classify(tt.days, period, grace)
			if got.Action != tt.wantAction {
				t.Errorf("Classify(%d) action = %d, want %d", tt.days, got.Action, tt.wantAction)
			}
			if got.Tier != tt.wantTier {
				t.Errorf("Classify(%d) tier = %s, want %s", tt.days, got.Tier, tt.wantTier)
			}
			if got.DaysInactive != tt.days {
				t.Errorf("Classify(%d) days = %d, want %d", tt.days, got.DaysInactive, tt.days)
			}
		})
	}
}

func TestClassifyPrecedence(t *testing.T) {
	t.Parallel()

	// With a short period the checkpoints collide with the final week;
	// the later stage must win.
	got := Classify(28, 30, 14)
	if got.Action != ActionWarn || got.Tier != model.TierFinalWeek {
		t.Errorf("Classify(28, 30, 14) = %+v, want final week warning", got)
	}

	// Day 15 is both 50% of 30 and well below the final week; the
	// checkpoint applies.
	got = Classify(15, 30, 14)
	if got.Tier != model.TierFiftyPercent {
		t.Errorf("Classify(15, 30, 14) tier = %s, want %s", got.Tier, model.TierFiftyPercent)
	}
}

func TestClassifyExactlyOneOutcomePerDay(t *testing.T) {
	t.Parallel()

	// Walk a full episode: every day must produce exactly one
	// well-defined outcome and the progression must never regress from
	// disclose back to warn.
	const (
		period = 60
		grace  = 14
	)

	disclosed := false
	for day := 0; day <= period+grace+30; day++ {
		got := Classify(day, period, grace)

		switch got.Action {
		case ActionNone, ActionWarn, ActionDisclose:
		default:
			t.Fatalf("day %d: unknown action %d", day, got.Action)
		}

		if got.Action == ActionDisclose {
			disclosed = true
			if day < period+grace {
				t.Errorf("day %d: disclosure before grace expiry", day)
			}
		} else if disclosed {
			t.Errorf("day %d: regressed to %d after disclosure threshold", day, got.Action)
		}

		if got.Action == ActionWarn && got.Tier == model.TierNone {
			t.Errorf("day %d: warn with no tier", day)
		}
	}

	if !disclosed {
		t.Error("episode never reached disclosure")
	}
}

func TestClassifyGraceCadence(t *testing.T) {
	t.Parallel()

	const (
		period = 100
		grace  = 14
	)

	warned := 0
	for day := period; day < period+grace; day++ {
		got := Classify(day, period, grace)
		wantWarn := (day-period)%2 == 0
		if wantWarn && (got.Action != ActionWarn || got.Tier != model.TierGracePeriod) {
			t.Errorf("day %d: got %+v, want grace warning", day, got)
		}
		if !wantWarn && got.Action != ActionNone {
			t.Errorf("day %d: got %+v, want none", day, got)
		}
		if got.Action == ActionWarn {
			warned++
		}
	}

	if warned != grace/2 {
		t.Errorf("grace warnings = %d, want %d", warned, grace/2)
	}
}
