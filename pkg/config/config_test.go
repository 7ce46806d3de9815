package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			WeeklyTarget:         25,
			CompletionWindowDays: 400,
			Technicians:          []string{"D. Harmon", "K. Osei"},
			PriorityTiers:        map[string]int{"PUMP-101": 1, "HVAC-02": 3},
		},
	}
}

func TestValidate_Valid(t *testing.T) {
	require.NoError(t, validConfig().validate())
}

func TestValidate_NegativeWeeklyTarget(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.WeeklyTarget = -1

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "weekly_target")
}

func TestValidate_ZeroCompletionWindow(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.CompletionWindowDays = 0

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion_window_days")
}

func TestValidate_TrimsTechnicians(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.Technicians = []string{" D. Harmon ", "K. Osei"}

	require.NoError(t, cfg.validate())
	assert.Equal(t, []string{"D. Harmon", "K. Osei"}, cfg.Scheduler.Technicians)
}

func TestValidate_BlankTechnician(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.Technicians = []string{"D. Harmon", "   "}

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "roster entry 1")
}

func TestValidate_TierOutOfRange(t *testing.T) {
	cfg := validConfig()
	cfg.Scheduler.PriorityTiers["PUMP-101"] = 4

	err := cfg.validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PUMP-101")
}

func TestTierFor(t *testing.T) {
	s := &SchedulerConfig{PriorityTiers: map[string]int{"PUMP-101": 1}}

	assert.Equal(t, 1, s.TierFor("PUMP-101"))
	assert.Equal(t, 99, s.TierFor("UNKNOWN-999"))
}

func TestTierFor_NilMap(t *testing.T) {
	s := &SchedulerConfig{}

	assert.Equal(t, 99, s.TierFor("PUMP-101"))
}

func TestConnectionString(t *testing.T) {
	db := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "cmms",
		Password: "hunter2",
		Database: "pm",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=cmms password=hunter2 dbname=pm sslmode=require",
		db.ConnectionString())
}
