package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env               string         // dev, production
	OfficeName        string         // display name of the office
	Location          *time.Location // zone used for schedule times and week filters
	CancellationLimit int            // cancellations before a patient is removed
	Sim               SimConfig
}

// SimConfig drives the simulate command.
type SimConfig struct {
	Doctors    int       // doctors to seed
	Patients   int       // patients to seed
	Days       int       // working days of availability from Start
	Operations int       // random booking/cancellation operations
	Seed       int64     // 0 means time based
	Start      time.Time // first working day, defaults to next Monday
}

func Load() (Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("OFFICE_TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid OFFICE_TIMEZONE: %w", err)
	}

	cfg := Config{
		Env:               getEnv("APP_ENV", "dev"),
		OfficeName:        getEnv("OFFICE_NAME", "Medina Inc."),
		Location:          loc,
		CancellationLimit: getInt("CANCELLATION_LIMIT", 10),
		Sim: SimConfig{
			Doctors:    getInt("SIM_DOCTORS", 8),
			Patients:   getInt("SIM_PATIENTS", 40),
			Days:       getInt("SIM_DAYS", 5),
			Operations: getInt("SIM_OPERATIONS", 200),
			Seed:       int64(getInt("SIM_SEED", 0)),
		},
	}

	if cfg.CancellationLimit <= 0 {
		return Config{}, errors.New("CANCELLATION_LIMIT must be > 0")
	}
	for _, v := range []struct {
		key string
		n   int
	}{
		{"SIM_DOCTORS", cfg.Sim.Doctors},
		{"SIM_PATIENTS", cfg.Sim.Patients},
		{"SIM_DAYS", cfg.Sim.Days},
		{"SIM_OPERATIONS", cfg.Sim.Operations},
	} {
		if v.n < 0 {
			return Config{}, fmt.Errorf("%s must be >= 0", v.key)
		}
	}

	if raw := os.Getenv("SIM_START"); raw != "" {
		start, err := ParseDate(raw, loc)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SIM_START: %w", err)
		}
		cfg.Sim.Start = start
	} else {
		cfg.Sim.Start = NextMonday(time.Now().In(loc))
	}

	return cfg, nil
}

// ParseDate accepts RFC3339 or a plain 2006-01-02 date in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation("2006-01-02", raw, loc)
}

// NextMonday returns midnight of the first Monday strictly after now.
func NextMonday(now time.Time) time.Time {
	y, m, d := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	offset := (8 - int(day.Weekday())) % 7
	if offset == 0 {
		offset = 7
	}
	return day.AddDate(0, 0, offset)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		fmt.Fprintf(os.Stderr, "invalid integer for %s=%q, using default %d\n", key, v, def)
	}
	return def
}
