package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"lg/adaptive-tdee-go-api/expenditure"
)

// config is the server's environment, read once at startup.
type config struct {
	DBURL         string
	Port          string
	CORSOrigins   []string
	TuningFile    string
	LookbackWeeks int
}

// getEnv returns the value of key, or fallback when it is unset or empty.
func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func loadConfig() (config, error) {
	cfg := config{
		DBURL:      os.Getenv("DB_URL"),
		Port:       getEnv("PORT", "3000"),
		TuningFile: os.Getenv("ENGINE_TUNING_FILE"),
	}
	if cfg.DBURL == "" {
		return config{}, fmt.Errorf("DB_URL is not set")
	}

	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	weeks, err := strconv.Atoi(getEnv("ESTIMATE_LOOKBACK_WEEKS", strconv.Itoa(expenditure.DefaultLookbackWeeks)))
	if err != nil || weeks < 1 || weeks > expenditure.MaxLookbackWeeks {
		return config{}, fmt.Errorf("ESTIMATE_LOOKBACK_WEEKS must be a whole number of weeks between 1 and %d", expenditure.MaxLookbackWeeks)
	}
	cfg.LookbackWeeks = weeks
	return cfg, nil
}
