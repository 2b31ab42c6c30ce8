package config

import (
	"os"
	"strconv"
	"strings"
)

// EnforceClockWindows turns the clock-window rule table into a hard gate at
// clock-in. Default off: the resolved window label is attached to responses
// for messaging only. Do not enable without product confirmation.
//
// Set via env:
// - ENFORCE_CLOCK_WINDOWS=true
func EnforceClockWindows() bool {
	return boolFromEnv("ENFORCE_CLOCK_WINDOWS")
}

// WeatherCaptureDisabled turns off the best-effort weather snapshot taken at
// clock-in/out. Capture failures never surface to callers either way.
//
// Set via env:
// - WEATHER_CAPTURE_DISABLED=true
func WeatherCaptureDisabled() bool {
	return boolFromEnv("WEATHER_CAPTURE_DISABLED")
}

// OutboxDispatchDisabled stops the background Pub/Sub dispatcher. Events are
// still written in-transaction and can be drained later.
//
// Set via env:
// - OUTBOX_DISPATCH_DISABLED=true
func OutboxDispatchDisabled() bool {
	return boolFromEnv("OUTBOX_DISPATCH_DISABLED")
}

// MaxShiftHours is the duration after which an ended shift requires a manager
// override before it is payroll-eligible.
//
// Set via env:
// - MAX_SHIFT_HOURS=13
func MaxShiftHours() int {
	v := strings.TrimSpace(os.Getenv("MAX_SHIFT_HOURS"))
	if v == "" {
		return 13
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 13
	}
	return n
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
