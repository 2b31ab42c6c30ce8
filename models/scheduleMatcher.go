package models

import (
	"context"
	"time"

	"github.com/storeops/shiftdesk_backend/utils"
)

// Schedule matching tolerances, in minutes relative to the scheduled start.
// Early clock-ins up to 5 minutes and late ones up to 15 are an exact match.
const (
	matchEarlyTolerance = -5
	matchLateTolerance  = 15

	// templateTolerance bounds the last-resort open/close inference against
	// the store's recurring shift templates.
	templateTolerance = 120
)

// ScheduleMatch is the matcher's resolution for one clock-in attempt.
// Matching is deterministic: identical schedule rows and entered time always
// produce the identical ScheduledShiftId and ResolvedType.
type ScheduleMatch struct {
	// HasScheduledShift is false when the date has no published rows at all;
	// clock-in is then rejected unless forced.
	HasScheduledShift bool

	// ScheduledShiftId is the linked row, 0 when nothing could be linked.
	ScheduledShiftId int

	ResolvedType ShiftType

	// Exact is true when the winning candidate fell inside -5..+15.
	Exact bool

	// DiffMinutes is enteredMinutes - scheduledStartMinutes for the winning
	// candidate (meaningless when ScheduledShiftId is 0).
	DiffMinutes int
}

// MatchScheduledShift resolves which published scheduled shift an entered
// clock-in time corresponds to.
//
// Resolution priority: exact window match > double-coverage candidate >
// nearest candidate > template-based open/close inference > caller hint >
// "other". The template fallback only runs when the date has no published
// rows, so its ±120 tolerance never competes with the -5/+15 window.
func MatchScheduledShift(ctx context.Context, storeId int, profileId int, plannedStart time.Time, timezone string, typeHint ShiftType) (*ScheduleMatch, error) {
	rounded := utils.RoundToHalfHour(plannedStart)
	date, err := utils.ConvertToDate(rounded, timezone)
	if err != nil {
		return nil, err
	}

	rows, err := PublishedShiftsForDate(ctx, storeId, profileId, date)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		match := &ScheduleMatch{HasScheduledShift: false}
		match.ResolvedType = inferTypeFromTemplates(ctx, storeId, rounded, timezone, typeHint)
		return match, nil
	}

	enteredMin := utils.MinuteOfDay(utils.ConvertToLocalTime(rounded, timezone))
	result := evaluateCandidates(rows, enteredMin)
	result.HasScheduledShift = true

	if result.ScheduledShiftId == 0 {
		// Rows existed but none could be linked; fall through the remaining
		// priority chain.
		if typeHint != "" {
			result.ResolvedType = typeHint
		} else {
			result.ResolvedType = ShiftTypeOther
		}
	}
	return result, nil
}

// evaluateCandidates runs the window/double/nearest scan over the candidate
// rows. Rows must already be ordered (start_clock, id): the first-encountered
// candidate wins ties, and that order is part of the contract.
func evaluateCandidates(rows []*ScheduledShift, enteredMin int) *ScheduleMatch {
	var (
		exactRow    *ScheduledShift
		exactDiff   int
		doubleRow   *ScheduledShift
		doubleDiff  int
		nearestRow  *ScheduledShift
		nearestDiff int
		haveExact   bool
		haveDouble  bool
		haveNearest bool
	)

	for _, row := range rows {
		startMin, err := utils.ParseClock(row.StartClock)
		if err != nil {
			continue
		}
		diff := enteredMin - startMin

		if diff >= matchEarlyTolerance && diff <= matchLateTolerance {
			if !haveExact || abs(diff) < abs(exactDiff) {
				exactRow = row
				exactDiff = diff
				haveExact = true
			}
		}

		if row.ShiftMode == ShiftModeDouble {
			if !haveDouble || abs(diff) < abs(doubleDiff) {
				doubleRow = row
				doubleDiff = diff
				haveDouble = true
			}
		}

		if !haveNearest || abs(diff) < abs(nearestDiff) {
			nearestRow = row
			nearestDiff = diff
			haveNearest = true
		}
	}

	switch {
	case haveExact:
		return &ScheduleMatch{
			ScheduledShiftId: exactRow.ID,
			ResolvedType:     resolveRowType(exactRow),
			Exact:            true,
			DiffMinutes:      exactDiff,
		}
	case haveDouble:
		return &ScheduleMatch{
			ScheduledShiftId: doubleRow.ID,
			ResolvedType:     ShiftTypeDouble,
			DiffMinutes:      doubleDiff,
		}
	case haveNearest:
		return &ScheduleMatch{
			ScheduledShiftId: nearestRow.ID,
			ResolvedType:     resolveRowType(nearestRow),
			DiffMinutes:      nearestDiff,
		}
	}
	return &ScheduleMatch{}
}

// resolveRowType collapses double-mode rows to the double type.
func resolveRowType(row *ScheduledShift) ShiftType {
	if row.ShiftMode == ShiftModeDouble {
		return ShiftTypeDouble
	}
	return row.ShiftType
}

// inferTypeFromTemplates guesses open/close from the store's recurring
// templates when no schedule row exists. Failures degrade to the caller hint
// then "other"; this path never errors a clock-in.
func inferTypeFromTemplates(ctx context.Context, storeId int, rounded time.Time, timezone string, typeHint ShiftType) ShiftType {
	enteredMin := utils.MinuteOfDay(utils.ConvertToLocalTime(rounded, timezone))

	templates, err := GetShiftTemplates(ctx, storeId)
	if err == nil {
		bestDiff := templateTolerance + 1
		var bestType ShiftType
		for _, tpl := range templates {
			startMin, err := utils.ParseClock(tpl.StartClock)
			if err != nil {
				continue
			}
			diff := abs(enteredMin - startMin)
			if diff <= templateTolerance && diff < bestDiff {
				bestDiff = diff
				bestType = tpl.ShiftType
			}
		}
		if bestType != "" {
			return bestType
		}
	}

	if typeHint != "" {
		return typeHint
	}
	return ShiftTypeOther
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
