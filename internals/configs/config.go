package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string

	// Cancellation lead times are policy, not incidental: a booking affects
	// one member, a class session affects every attendee, so the schedule
	// lead is the longer one.
	BookingCancelLead  time.Duration
	ScheduleCancelLead time.Duration

	// Cron spec for the card expiry sweep.
	CardExpirySweepSpec string

	// Address for the prometheus side listener. Empty disables it.
	MetricsAddr string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file, using system ENV")
		}
	}

	JWTSecret = GetEnv("JWT_SECRET")
	if JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set")
	}

	BookingCancelLead = minutesEnv("BOOKING_CANCEL_LEAD_MINUTES", 120)
	ScheduleCancelLead = minutesEnv("SCHEDULE_CANCEL_LEAD_MINUTES", 180)
	CardExpirySweepSpec = GetEnv("CARD_EXPIRY_SWEEP_SPEC", "@hourly")
	MetricsAddr = GetEnv("METRICS_ADDR", ":9100")
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func minutesEnv(key string, def int) time.Duration {
	raw := GetEnv(key)
	if raw == "" {
		return time.Duration(def) * time.Minute
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		log.Printf("invalid %s=%q, using default %d minutes", key, raw, def)
		return time.Duration(def) * time.Minute
	}
	return time.Duration(n) * time.Minute
}
