package config

import (
	"os"
	"strconv"
)

type Config struct {
	RoundCount               int
	SubmitSeconds            int
	VotingSeconds            int
	MaxPlayers               int
	ScoreDisplaySeconds      int
	EmptyRoundGraceSeconds   int
	AFKSweepSeconds          int
	AFKThresholdSeconds      int
	RemovalGraceSeconds      int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		RoundCount:               5,
		SubmitSeconds:            90,
		VotingSeconds:            60,
		MaxPlayers:               6,
		ScoreDisplaySeconds:      3,
		EmptyRoundGraceSeconds:   2,
		AFKSweepSeconds:          30,
		AFKThresholdSeconds:      180,
		RemovalGraceSeconds:      600,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	applyInt := func(key string, dest *int, requirePositive bool) {
		raw := os.Getenv(key)
		if raw == "" {
			return
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return
		}
		if requirePositive && value <= 0 {
			return
		}
		*dest = value
	}
	applyInt("ROUND_COUNT", &cfg.RoundCount, true)
	applyInt("SUBMIT_SECONDS", &cfg.SubmitSeconds, true)
	applyInt("VOTING_SECONDS", &cfg.VotingSeconds, true)
	applyInt("MAX_PLAYERS", &cfg.MaxPlayers, true)
	applyInt("SCORE_DISPLAY_SECONDS", &cfg.ScoreDisplaySeconds, true)
	applyInt("EMPTY_ROUND_GRACE_SECONDS", &cfg.EmptyRoundGraceSeconds, true)
	applyInt("AFK_SWEEP_SECONDS", &cfg.AFKSweepSeconds, true)
	applyInt("AFK_THRESHOLD_SECONDS", &cfg.AFKThresholdSeconds, true)
	applyInt("REMOVAL_GRACE_SECONDS", &cfg.RemovalGraceSeconds, true)
	applyInt("DB_MAX_OPEN_CONNS", &cfg.DBMaxOpenConns, true)
	applyInt("DB_MAX_IDLE_CONNS", &cfg.DBMaxIdleConns, true)
	applyInt("DB_CONN_MAX_LIFETIME_SECONDS", &cfg.DBConnMaxLifetimeSeconds, true)
	applyInt("DB_CONN_MAX_IDLE_SECONDS", &cfg.DBConnMaxIdleTimeSeconds, true)
	return cfg
}
