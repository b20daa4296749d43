package config

import (
	"math"
	"time"

	"github.com/aaronzipp/crewmate/internal/models"
)

// Tuning holds every game balance parameter: cooldowns, timers, odds and
// the pacing of bots.
type Tuning struct {
	KillCooldown        time.Duration `env:"KILL_COOLDOWN" envDefault:"18s"`
	StartGrace          time.Duration `env:"START_GRACE" envDefault:"90s"`
	PostMeetingCooldown time.Duration `env:"POST_MEETING_COOLDOWN" envDefault:"40s"`
	SabotageCooldown    time.Duration `env:"SABOTAGE_COOLDOWN" envDefault:"18s"`
	ShieldCooldown      time.Duration `env:"SHIELD_COOLDOWN" envDefault:"60s"`
	MeetingCooldown     time.Duration `env:"MEETING_COOLDOWN" envDefault:"60s"`
	MeetingTimeout      time.Duration `env:"MEETING_TIMEOUT" envDefault:"5m"`
	ReportGrace         time.Duration `env:"REPORT_GRACE" envDefault:"100s"`
	ReportCooldown      time.Duration `env:"REPORT_COOLDOWN" envDefault:"15s"`
	KillGap             time.Duration `env:"KILL_GAP" envDefault:"8s"`
	TickInterval        time.Duration `env:"TICK_INTERVAL" envDefault:"1s"`

	EmergencyMeetings int `env:"EMERGENCY_MEETINGS" envDefault:"1"`
	FastTravels       int `env:"FAST_TRAVELS" envDefault:"3"`

	LightsDuration  time.Duration `env:"LIGHTS_DURATION" envDefault:"90s"`
	OxygenDuration  time.Duration `env:"OXYGEN_DURATION" envDefault:"60s"`
	ReactorDuration time.Duration `env:"REACTOR_DURATION" envDefault:"45s"`
	CommsDuration   time.Duration `env:"COMMS_DURATION" envDefault:"45s"`
	DoorsDuration   time.Duration `env:"DOORS_DURATION" envDefault:"10s"`
	FixSteps        int           `env:"FIX_STEPS" envDefault:"2"`
	FixWindow       time.Duration `env:"FIX_WINDOW" envDefault:"20s"`

	VentNoiseChance       float64 `env:"VENT_NOISE_CHANCE" envDefault:"0.1"`
	Witnesses             Count   `env:"WITNESSES" envDefault:"2..4"`
	WitnessImpostorChance float64 `env:"WITNESS_IMPOSTOR_CHANCE" envDefault:"0.7"`

	Bots BotTuning `envPrefix:"BOT_"`
}

// BotTuning paces the autonomous players. Chances are probabilities in [0, 1].
type BotTuning struct {
	CrewStartDelay     Span          `env:"CREW_START_DELAY" envDefault:"5s..15s"`
	ImpostorStartDelay Span          `env:"IMPOSTOR_START_DELAY" envDefault:"10s..20s"`
	PollInterval       time.Duration `env:"POLL_INTERVAL" envDefault:"2s"`

	DistractionChance float64 `env:"DISTRACTION_CHANCE" envDefault:"0.05"`
	Distraction       Span    `env:"DISTRACTION" envDefault:"3s..5s"`
	FollowChance      float64 `env:"FOLLOW_CHANCE" envDefault:"0.05"`
	FollowHops        Count   `env:"FOLLOW_HOPS" envDefault:"2..4"`

	CrewPanicChance     float64 `env:"CREW_PANIC_CHANCE" envDefault:"0.75"`
	ImpostorPanicChance float64 `env:"IMPOSTOR_PANIC_CHANCE" envDefault:"0.3"`
	ReturnStep          Span    `env:"RETURN_STEP" envDefault:"1s..2s"`

	Step            Span    `env:"STEP" envDefault:"3s..7s"`
	WrongTurnChance float64 `env:"WRONG_TURN_CHANCE" envDefault:"0.1"`
	DetourChance    float64 `env:"DETOUR_CHANCE" envDefault:"0.05"`
	UTurnChance     float64 `env:"U_TURN_CHANCE" envDefault:"0.05"`
	ReportChance    float64 `env:"REPORT_CHANCE" envDefault:"0.4"`

	TaskDwell   Span    `env:"TASK_DWELL" envDefault:"8s..20s"`
	PauseChance float64 `env:"PAUSE_CHANCE" envDefault:"0.25"`
	Pause       Span    `env:"PAUSE" envDefault:"1.5s..4s"`
	Idle        Span    `env:"IDLE" envDefault:"6s..18s"`

	KillChance         float64 `env:"KILL_CHANCE" envDefault:"0.3"`
	SabotageChance     float64 `env:"SABOTAGE_CHANCE" envDefault:"0.15"`
	FakeTaskChance     float64 `env:"FAKE_TASK_CHANCE" envDefault:"0.4"`
	FakeCompleteChance float64 `env:"FAKE_COMPLETE_CHANCE" envDefault:"0.7"`
	SelfReportChance   float64 `env:"SELF_REPORT_CHANCE" envDefault:"0.3"`
	BotReportChance    float64 `env:"TELEPORT_REPORT_CHANCE" envDefault:"0.4"`
	Discovery          Span    `env:"DISCOVERY" envDefault:"10s..30s"`
	FleeHops           Count   `env:"FLEE_HOPS" envDefault:"2..3"`
	ImpostorIdle       Span    `env:"IMPOSTOR_IDLE" envDefault:"4s..10s"`

	VoteDelay          Span    `env:"VOTE_DELAY" envDefault:"5s..15s"`
	VoteStep           Span    `env:"VOTE_STEP" envDefault:"2s..8s"`
	ImpostorNearbyVote float64 `env:"IMPOSTOR_NEARBY_VOTE" envDefault:"0.65"`
	ImpostorSkip       float64 `env:"IMPOSTOR_SKIP" envDefault:"0.4"`
	CrewNearbyVote     float64 `env:"CREW_NEARBY_VOTE" envDefault:"0.75"`
	CrewSkip           float64 `env:"CREW_SKIP" envDefault:"0.35"`
	NearbyWeight       float64 `env:"NEARBY_WEIGHT" envDefault:"2.7"`
	OtherWeight        float64 `env:"OTHER_WEIGHT" envDefault:"0.5"`
}

// SabotageDuration is how long a sabotage runs before it resolves on its own
func (t Tuning) SabotageDuration(kind models.Sabotage) time.Duration {
	switch kind {
	case models.SabotageLights:
		return t.LightsDuration
	case models.SabotageOxygen:
		return t.OxygenDuration
	case models.SabotageReactor:
		return t.ReactorDuration
	case models.SabotageComms:
		return t.CommsDuration
	case models.SabotageDoors:
		return t.DoorsDuration
	default:
		return 0
	}
}

// Ticks converts a duration to cooldown ticks, rounding up. Cooldown
// counters are kept in ticks, which are seconds at the default interval.
func (t Tuning) Ticks(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	interval := t.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	return int(math.Ceil(float64(d) / float64(interval)))
}
