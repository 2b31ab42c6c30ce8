package models

import "errors"

type ShiftType string

const (
	ShiftTypeOpen   ShiftType = "open"
	ShiftTypeClose  ShiftType = "close"
	ShiftTypeDouble ShiftType = "double"
	ShiftTypeOther  ShiftType = "other"
)

func ParseShiftType(s string) (ShiftType, error) {
	switch ShiftType(s) {
	case ShiftTypeOpen, ShiftTypeClose, ShiftTypeDouble, ShiftTypeOther:
		return ShiftType(s), nil
	}
	return "", errors.New("invalid shift type")
}

// ShiftMode tags a scheduled row; "double" collapses an open+close pair for
// the same employee into one double shift at clock-in.
type ShiftMode string

const (
	ShiftModeStandard ShiftMode = "standard"
	ShiftModeDouble   ShiftMode = "double"
	ShiftModeOther    ShiftMode = "other"
)

type ScheduleStatus string

const (
	ScheduleStatusDraft     ScheduleStatus = "draft"
	ScheduleStatusPublished ScheduleStatus = "published"
)

type ShiftSource string

const (
	ShiftSourceSchedule ShiftSource = "schedule"
	// ShiftSourceManual marks a force-created unscheduled shift; these are
	// flagged for later review.
	ShiftSourceManual ShiftSource = "manual"
)

type DrawerCountType string

const (
	DrawerCountStart      DrawerCountType = "start"
	DrawerCountChangeover DrawerCountType = "changeover"
	DrawerCountEnd        DrawerCountType = "end"
)

func ParseDrawerCountType(s string) (DrawerCountType, error) {
	switch DrawerCountType(s) {
	case DrawerCountStart, DrawerCountChangeover, DrawerCountEnd:
		return DrawerCountType(s), nil
	}
	return "", errors.New("invalid drawer count type")
}

type ManualCloseReview string

const (
	ManualCloseReviewPending  ManualCloseReview = "pending"
	ManualCloseReviewApproved ManualCloseReview = "approved"
	ManualCloseReviewEdited   ManualCloseReview = "edited"
	ManualCloseReviewRemoved  ManualCloseReview = "removed"
)

func ParseManualCloseReview(s string) (ManualCloseReview, error) {
	switch ManualCloseReview(s) {
	case ManualCloseReviewApproved, ManualCloseReviewEdited, ManualCloseReviewRemoved:
		return ManualCloseReview(s), nil
	}
	return "", errors.New("invalid manual close disposition")
}

type CloseoutStatus string

const (
	CloseoutStatusDraft  CloseoutStatus = "draft"
	CloseoutStatusPass   CloseoutStatus = "pass"
	CloseoutStatusWarn   CloseoutStatus = "warn"
	CloseoutStatusFail   CloseoutStatus = "fail"
	CloseoutStatusLocked CloseoutStatus = "locked"
)

// ReadOnly reports whether the closeout may no longer be altered through the
// submission endpoint.
func (s CloseoutStatus) ReadOnly() bool {
	return s == CloseoutStatusPass || s == CloseoutStatusLocked
}

type PhotoKind string

const (
	PhotoKindDepositSlip PhotoKind = "deposit_slip"
	PhotoKindPos         PhotoKind = "pos"
)

type OutboxPublishStatus string

const (
	OutboxPublishStatusPending   OutboxPublishStatus = "PENDING"
	OutboxPublishStatusPublished OutboxPublishStatus = "PUBLISHED"
	OutboxPublishStatusFailed    OutboxPublishStatus = "FAILED"
)

// Outbox reference/action tags.
type EventReferenceType string

const (
	EventReferenceShift    EventReferenceType = "Shift"
	EventReferenceCloseout EventReferenceType = "SafeCloseout"
)

type EventAction string

const (
	EventActionShiftOpened      EventAction = "shift.opened"
	EventActionShiftClosed      EventAction = "shift.closed"
	EventActionOverrideApproved EventAction = "shift.override_approved"
	EventActionManualReviewed   EventAction = "shift.manual_close_reviewed"
	EventActionCloseoutSubmit   EventAction = "closeout.submitted"
	EventActionCloseoutReviewed EventAction = "closeout.reviewed"
)
