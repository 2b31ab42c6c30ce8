package models

import (
	"time"

	"github.com/storeops/shiftdesk_backend/utils"
)

// Clock windows are declarative data evaluated by one resolver; per-store or
// per-day exceptions are added as rows, not branches.
//
// Minutes are store-local minutes since midnight. A crossesMidnight rule
// claims the early-morning minutes of the FOLLOWING calendar day back to its
// origin weekday (e.g. a Friday 23:50-00:15 close window matches Saturday
// 00:10).

type StoreClass string

const (
	StoreClassStandard  StoreClass = "standard"
	StoreClassLateClose StoreClass = "late_close"
)

type clockWindowRule struct {
	Class           StoreClass
	ShiftType       ShiftType
	Weekday         time.Weekday
	StartMin        int
	EndMin          int
	CrossesMidnight bool
	Label           string
}

var clockWindowRules = []clockWindowRule{
	// standard stores: same windows all week
	{StoreClassStandard, ShiftTypeOpen, time.Sunday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassStandard, ShiftTypeOpen, time.Monday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassStandard, ShiftTypeOpen, time.Tuesday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassStandard, ShiftTypeOpen, time.Wednesday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassStandard, ShiftTypeOpen, time.Thursday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassStandard, ShiftTypeOpen, time.Friday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassStandard, ShiftTypeOpen, time.Saturday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassStandard, ShiftTypeClose, time.Sunday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassStandard, ShiftTypeClose, time.Monday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassStandard, ShiftTypeClose, time.Tuesday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassStandard, ShiftTypeClose, time.Wednesday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassStandard, ShiftTypeClose, time.Thursday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassStandard, ShiftTypeClose, time.Friday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassStandard, ShiftTypeClose, time.Saturday, 13 * 60, 23*60 + 30, false, "evening close"},

	// late-close stores stay open past midnight on Friday/Saturday
	{StoreClassLateClose, ShiftTypeOpen, time.Sunday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassLateClose, ShiftTypeOpen, time.Monday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassLateClose, ShiftTypeOpen, time.Tuesday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassLateClose, ShiftTypeOpen, time.Wednesday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassLateClose, ShiftTypeOpen, time.Thursday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassLateClose, ShiftTypeOpen, time.Friday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassLateClose, ShiftTypeOpen, time.Saturday, 5 * 60, 10 * 60, false, "morning open"},
	{StoreClassLateClose, ShiftTypeClose, time.Sunday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassLateClose, ShiftTypeClose, time.Monday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassLateClose, ShiftTypeClose, time.Tuesday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassLateClose, ShiftTypeClose, time.Wednesday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassLateClose, ShiftTypeClose, time.Thursday, 13 * 60, 23*60 + 30, false, "evening close"},
	{StoreClassLateClose, ShiftTypeClose, time.Friday, 13 * 60, 15 + 24*60, true, "late close"},
	{StoreClassLateClose, ShiftTypeClose, time.Saturday, 13 * 60, 15 + 24*60, true, "late close"},
}

// ClockWindowResult carries the resolved window. Matched=false still fills
// Label with the nearest rule so the caller can render "expected during ..."
// messaging even when no window applies.
type ClockWindowResult struct {
	Matched   bool      `json:"matched"`
	ShiftType ShiftType `json:"shift_type"`
	Label     string    `json:"label"`
}

// ResolveClockWindow maps a store-local timestamp onto the rule table.
// The first matching rule wins; table order is the precedence.
func ResolveClockWindow(localTime time.Time, class StoreClass) ClockWindowResult {
	weekday := localTime.Weekday()
	minute := utils.MinuteOfDay(localTime)

	// Previous weekday for cross-midnight attribution.
	prevWeekday := (weekday + 6) % 7

	var nearest *clockWindowRule
	nearestDist := 1 << 30

	for i := range clockWindowRules {
		rule := &clockWindowRules[i]
		if rule.Class != class {
			continue
		}

		if !rule.CrossesMidnight {
			if rule.Weekday == weekday && minute >= rule.StartMin && minute <= rule.EndMin {
				return ClockWindowResult{Matched: true, ShiftType: rule.ShiftType, Label: rule.Label}
			}
		} else {
			// Same-day portion: StartMin..23:59.
			if rule.Weekday == weekday && minute >= rule.StartMin {
				return ClockWindowResult{Matched: true, ShiftType: rule.ShiftType, Label: rule.Label}
			}
			// Next-day spill: 00:00..(EndMin-1440), attributed to origin day.
			if rule.Weekday == prevWeekday && minute <= rule.EndMin-24*60 {
				return ClockWindowResult{Matched: true, ShiftType: rule.ShiftType, Label: rule.Label}
			}
		}

		if rule.Weekday == weekday {
			dist := distanceToWindow(minute, rule.StartMin, rule.EndMin)
			if dist < nearestDist {
				nearestDist = dist
				nearest = rule
			}
		}
	}

	if nearest != nil {
		return ClockWindowResult{Matched: false, ShiftType: nearest.ShiftType, Label: nearest.Label}
	}
	return ClockWindowResult{Matched: false}
}

func distanceToWindow(minute, startMin, endMin int) int {
	if minute < startMin {
		return startMin - minute
	}
	if minute > endMin {
		return minute - endMin
	}
	return 0
}
