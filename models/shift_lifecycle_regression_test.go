package models_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/models"
	"github.com/storeops/shiftdesk_backend/utils"
)

// End-to-end lifecycle against real MySQL and Redis: publish a schedule,
// clock in against it, record drawer counts and register totals, clock out,
// then walk the safe closeout through submit and manager review.
func TestShiftLifecycle_ClockInThroughLockedCloseout(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	redisName, redisPort := startRedisContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(redisName) })

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("REDIS_ADDRESS", fmt.Sprintf("127.0.0.1:%s", redisPort))
	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "shiftdesk_test")
	t.Setenv("WEATHER_CAPTURE_DISABLED", "1")

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()
	models.MigrateTable()

	adminCtx := utils.SetSkipStoreScopeInContext(context.Background(), true)

	store, err := models.CreateStore(adminCtx, &models.NewStore{
		Name:                "Lakeview",
		ExpectedFloatCents:  150_00,
		Timezone:            "UTC",
		DenomToleranceCents: 2_00,
	})
	if err != nil {
		t.Fatalf("CreateStore: %v", err)
	}

	manager, err := models.CreateProfile(adminCtx, &models.NewProfile{
		DisplayName: "Pat Manager",
		Password:    "manager-pass",
		IsManager:   true,
		StoreIds:    []int{store.ID},
	})
	if err != nil {
		t.Fatalf("CreateProfile manager: %v", err)
	}
	employee, err := models.CreateProfile(adminCtx, &models.NewProfile{
		DisplayName: "Sam Clerk",
		Pin:         "4321",
		StoreIds:    []int{store.ID},
	})
	if err != nil {
		t.Fatalf("CreateProfile employee: %v", err)
	}

	// The schedule pins the close shift to the current minute so the clock-in
	// lands inside the exact-match window and the closeout is already open.
	now := time.Now().UTC()
	nowClock := utils.FormatClock(now.Hour()*60 + now.Minute())
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	schedule, err := models.CreateSchedule(adminCtx, &models.NewSchedule{
		StoreId:     store.ID,
		PeriodStart: dayStart,
		PeriodEnd:   dayStart.Add(48 * time.Hour),
		Shifts: []models.NewScheduledShift{
			{
				ProfileId:  employee.ID,
				ShiftDate:  now.Format("2006-01-02"),
				ShiftType:  string(models.ShiftTypeClose),
				StartClock: nowClock,
				EndClock:   nowClock,
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateSchedule: %v", err)
	}
	if err := models.PublishSchedule(adminCtx, schedule.ID); err != nil {
		t.Fatalf("PublishSchedule: %v", err)
	}

	empCtx := utils.SetProfileIdInContext(context.Background(), employee.ID)
	empCtx = utils.SetStoreIdInContext(empCtx, store.ID)

	mgrCtx := utils.SetProfileIdInContext(context.Background(), manager.ID)
	mgrCtx = utils.SetIsManagerInContext(mgrCtx, true)
	mgrCtx = utils.SetManagedStoreIdsInContext(mgrCtx, []int{store.ID})

	// Kiosk auth path: token + profile + PIN.
	authProfile, authStore, err := models.AuthenticateKiosk(adminCtx, store.KioskToken, employee.ID, "4321")
	if err != nil {
		t.Fatalf("AuthenticateKiosk: %v", err)
	}
	if authProfile.ID != employee.ID || authStore.ID != store.ID {
		t.Fatalf("kiosk auth resolved wrong identity: profile=%d store=%d", authProfile.ID, authStore.ID)
	}

	// A day with no published rows and no force flag is rejected as
	// unscheduled without creating a row.
	unsched, err := models.ClockIn(empCtx, &models.NewClockIn{
		StoreId:        store.ID,
		PlannedStartAt: now.Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("ClockIn unscheduled day: %v", err)
	}
	if !unsched.Unscheduled || unsched.Shift != nil {
		t.Fatalf("expected unscheduled rejection, got %+v", unsched)
	}

	// An out-of-threshold unconfirmed start count must roll the committed
	// shift row back out. Nothing may survive the failed request.
	rolledBack, err := models.ClockIn(empCtx, &models.NewClockIn{
		StoreId:        store.ID,
		PlannedStartAt: now,
		StartDrawer:    &models.NewDrawerCount{DrawerCents: 200_01},
	})
	if err != nil {
		t.Fatalf("ClockIn out-of-threshold drawer: %v", err)
	}
	if !rolledBack.DrawerRequiresConfirm || rolledBack.Shift != nil {
		t.Fatalf("expected drawer confirm rejection, got %+v", rolledBack)
	}
	if _, err := models.GetOpenShift(empCtx, employee.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("ghost open shift survived rolled-back clock-in: %v", err)
	}
	// The opened event committed alongside the deleted row; it must be
	// swept out too or the dispatcher publishes a shift that never was.
	if events, err := models.PendingOutboxEvents(adminCtx, config.GetDB(), 50); err != nil {
		t.Fatalf("PendingOutboxEvents: %v", err)
	} else if len(events) != 0 {
		t.Fatalf("rolled-back clock-in left %d outbox events behind", len(events))
	}

	result, err := models.ClockIn(empCtx, &models.NewClockIn{
		StoreId:        store.ID,
		PlannedStartAt: now,
		StartDrawer:    &models.NewDrawerCount{DrawerCents: 150_00},
	})
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if result.Shift == nil {
		t.Fatalf("expected an open shift, got %+v", result)
	}
	shift := result.Shift
	if shift.ShiftType != models.ShiftTypeClose {
		t.Fatalf("resolved shift type = %q, want close", shift.ShiftType)
	}
	if shift.ScheduledShiftId == nil {
		t.Fatalf("matched clock-in missing schedule link")
	}

	// One open shift per profile, enforced by the database.
	if _, err := models.ClockIn(empCtx, &models.NewClockIn{
		StoreId:        store.ID,
		PlannedStartAt: now,
	}); !errors.Is(err, utils.ErrorAlreadyActive) {
		t.Fatalf("second clock-in = %v, want ErrorAlreadyActive", err)
	}

	// A coworker bound to the same store cannot count someone else's drawer.
	coworker, err := models.CreateProfile(adminCtx, &models.NewProfile{
		DisplayName: "Riley Clerk",
		Pin:         "9876",
		StoreIds:    []int{store.ID},
	})
	if err != nil {
		t.Fatalf("CreateProfile coworker: %v", err)
	}
	coworkerCtx := utils.SetProfileIdInContext(context.Background(), coworker.ID)
	coworkerCtx = utils.SetStoreIdInContext(coworkerCtx, store.ID)
	if _, err := models.RecordShiftDrawerCount(coworkerCtx, shift.ID, &models.NewDrawerCount{
		CountType:   string(models.DrawerCountChangeover),
		DrawerCents: 150_00,
	}); !errors.Is(err, utils.ErrorNotAuthorized) {
		t.Fatalf("coworker drawer count = %v, want ErrorNotAuthorized", err)
	}

	// Standalone changeover count, out of threshold: confirm-and-notify is
	// required before anything is written.
	confirmNeeded, err := models.RecordShiftDrawerCount(empCtx, shift.ID, &models.NewDrawerCount{
		CountType:   string(models.DrawerCountChangeover),
		DrawerCents: 200_01,
	})
	if err != nil {
		t.Fatalf("SaveDrawerCount unconfirmed: %v", err)
	}
	if !confirmNeeded.RequiresConfirm || confirmNeeded.Count != nil {
		t.Fatalf("expected requires-confirm, got %+v", confirmNeeded)
	}
	persisted, err := models.RecordShiftDrawerCount(empCtx, shift.ID, &models.NewDrawerCount{
		CountType:       string(models.DrawerCountChangeover),
		DrawerCents:     200_01,
		Confirmed:       true,
		NotifiedManager: true,
		Note:            "till swap mid-shift",
	})
	if err != nil {
		t.Fatalf("SaveDrawerCount confirmed: %v", err)
	}
	if persisted.Count == nil || !persisted.Count.OutOfThreshold {
		t.Fatalf("confirmed count not persisted as out-of-threshold: %+v", persisted)
	}

	// An opening X read lands first; later partial submissions must not
	// reset it.
	openX := int64(250_00)
	if _, err := models.SubmitSalesCheckpoint(empCtx, &models.NewSalesCheckpoint{
		ShiftId:          shift.ID,
		OpenXReportCents: &openX,
	}); err != nil {
		t.Fatalf("SubmitSalesCheckpoint open read: %v", err)
	}

	// Z report disagreeing with prior X + close sales must bounce for
	// confirmation, then persist the mismatch once confirmed.
	priorX := int64(200_00)
	closeSales := int64(800_63)
	zReport := int64(1000_00)
	checkpoint, err := models.SubmitSalesCheckpoint(empCtx, &models.NewSalesCheckpoint{
		ShiftId:           shift.ID,
		PriorXReportCents: &priorX,
		CloseSalesCents:   &closeSales,
		ZReportCents:      &zReport,
	})
	if err != nil {
		t.Fatalf("SubmitSalesCheckpoint unconfirmed: %v", err)
	}
	if !checkpoint.RequiresSalesConfirm || checkpoint.BalanceVarianceCents != -63 {
		t.Fatalf("expected sales confirm with variance -63, got %+v", checkpoint)
	}
	checkpoint, err = models.SubmitSalesCheckpoint(empCtx, &models.NewSalesCheckpoint{
		ShiftId:           shift.ID,
		PriorXReportCents: &priorX,
		CloseSalesCents:   &closeSales,
		ZReportCents:      &zReport,
		SalesConfirmed:    true,
	})
	if err != nil {
		t.Fatalf("SubmitSalesCheckpoint confirmed: %v", err)
	}
	if checkpoint.Record == nil || !checkpoint.Record.OutOfBalance {
		t.Fatalf("confirmed checkpoint not persisted out-of-balance: %+v", checkpoint)
	}
	if checkpoint.Record.OpenXReportCents != 250_00 {
		t.Fatalf("partial checkpoint reset open X to %d", checkpoint.Record.OpenXReportCents)
	}

	out, err := models.ClockOut(empCtx, shift.ID, &models.NewClockOut{
		EndDrawer: &models.NewDrawerCount{DrawerCents: 150_00},
	})
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if out.Shift == nil || out.Shift.EndedAt == nil || out.RequiresOverride {
		t.Fatalf("unexpected clock-out result: %+v", out)
	}
	if _, err := models.GetOpenShift(empCtx, employee.ID); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("shift still open after clock-out: %v", err)
	}

	// Safe closeout wizard. Cash 1000.63 less a 37.63 expense rounds up to a
	// 963.00 expected deposit; the bill count matches it exactly.
	cash := int64(1000_63)
	card := int64(350_00)
	float := int64(150_00)
	c9, c1 := 9, 1
	draft, err := models.SaveCloseoutDraft(empCtx, &models.NewCloseoutDraft{
		StoreId:           store.ID,
		ShiftId:           shift.ID,
		Step:              1,
		PriorXReportCents: &priorX,
	})
	if err != nil {
		t.Fatalf("SaveCloseoutDraft step 1: %v", err)
	}
	if _, err = models.SaveCloseoutDraft(empCtx, &models.NewCloseoutDraft{
		StoreId:        store.ID,
		ShiftId:        shift.ID,
		Step:           2,
		CashSalesCents: &cash,
		CardSalesCents: &card,
		Expenses: []models.NewCloseoutExpense{
			{Category: "supplies", AmountCents: 37_63, Note: "register tape"},
		},
	}); err != nil {
		t.Fatalf("SaveCloseoutDraft step 2: %v", err)
	}
	step3, err := models.SaveCloseoutDraft(empCtx, &models.NewCloseoutDraft{
		StoreId:  store.ID,
		ShiftId:  shift.ID,
		Step:     3,
		Count100: &c9,
		Count50:  &c1,
		Count10:  &c1,
		Count2:   &c1,
		Count1:   &c1,
	})
	if err != nil {
		t.Fatalf("SaveCloseoutDraft step 3: %v", err)
	}
	if step3.ExpectedDepositCents != 963_00 || step3.DenomTotalCents != 963_00 {
		t.Fatalf("step 3 totals: expected=%d denom=%d, want 96300/96300",
			step3.ExpectedDepositCents, step3.DenomTotalCents)
	}
	if _, err = models.SaveCloseoutDraft(empCtx, &models.NewCloseoutDraft{
		StoreId:          store.ID,
		ShiftId:          shift.ID,
		Step:             4,
		DrawerFloatCents: &float,
	}); err != nil {
		t.Fatalf("SaveCloseoutDraft step 4: %v", err)
	}

	// Deposit slip photo is mandatory before submit.
	if _, err := models.SubmitCloseout(empCtx, draft.ID); err == nil {
		t.Fatalf("submit without deposit slip photo must fail")
	}
	if _, err := models.AddCloseoutPhoto(empCtx, draft.ID, models.PhotoKindDepositSlip,
		"stores/1/closeouts/slip.jpg", "https://storage.test/slip.jpg", ""); err != nil {
		t.Fatalf("AddCloseoutPhoto: %v", err)
	}

	submitted, err := models.SubmitCloseout(empCtx, draft.ID)
	if err != nil {
		t.Fatalf("SubmitCloseout: %v", err)
	}
	if submitted.Status != models.CloseoutStatusPass || submitted.VarianceCents != 0 {
		t.Fatalf("submit status=%q variance=%d, want pass/0", submitted.Status, submitted.VarianceCents)
	}
	if submitted.SubmittedBy != employee.ID {
		t.Fatalf("submitted_by=%d, want %d", submitted.SubmittedBy, employee.ID)
	}

	// A passed closeout is read-only for everyone.
	if _, err := models.SaveCloseoutDraft(empCtx, &models.NewCloseoutDraft{
		StoreId:        store.ID,
		ShiftId:        shift.ID,
		Step:           2,
		CashSalesCents: &cash,
	}); !errors.Is(err, utils.ErrorReadOnly) {
		t.Fatalf("draft save after pass = %v, want ErrorReadOnly", err)
	}

	reviewed, err := models.ReviewCloseout(mgrCtx, draft.ID, "verified against deposit slip")
	if err != nil {
		t.Fatalf("ReviewCloseout: %v", err)
	}
	if reviewed.Status != models.CloseoutStatusLocked || reviewed.ReviewedBy != manager.ID {
		t.Fatalf("review status=%q by=%d, want locked/%d", reviewed.Status, reviewed.ReviewedBy, manager.ID)
	}

	// Every state change above must have left an outbox row behind.
	events, err := models.PendingOutboxEvents(adminCtx, config.GetDB(), 50)
	if err != nil {
		t.Fatalf("PendingOutboxEvents: %v", err)
	}
	seen := map[models.EventAction]bool{}
	for _, e := range events {
		seen[e.Action] = true
	}
	for _, want := range []models.EventAction{
		models.EventActionShiftOpened,
		models.EventActionShiftClosed,
		models.EventActionCloseoutSubmit,
		models.EventActionCloseoutReviewed,
	} {
		if !seen[want] {
			t.Fatalf("missing outbox event %q (have %v)", want, seen)
		}
	}

	// Double days: the eligibility gate keys off the close row's end clock,
	// not the morning open row the matcher links. Hours before that end the
	// wizard is rejected with its opening time.
	store2, err := models.CreateStore(adminCtx, &models.NewStore{
		Name:               "Harborside",
		ExpectedFloatCents: 150_00,
		Timezone:           "UTC",
		Class:              "late_close",
	})
	if err != nil {
		t.Fatalf("CreateStore late_close: %v", err)
	}
	if store2.Class != models.StoreClassLateClose {
		t.Fatalf("store class not persisted: %q", store2.Class)
	}
	opener, err := models.CreateProfile(adminCtx, &models.NewProfile{
		DisplayName: "Jo Dual",
		Pin:         "1111",
		StoreIds:    []int{store2.ID},
	})
	if err != nil {
		t.Fatalf("CreateProfile opener: %v", err)
	}

	tomorrow := dayStart.Add(24 * time.Hour)
	sched2, err := models.CreateSchedule(adminCtx, &models.NewSchedule{
		StoreId:     store2.ID,
		PeriodStart: tomorrow,
		PeriodEnd:   tomorrow.Add(48 * time.Hour),
		Shifts: []models.NewScheduledShift{
			{
				ProfileId:  opener.ID,
				ShiftDate:  tomorrow.Format("2006-01-02"),
				ShiftType:  string(models.ShiftTypeOpen),
				ShiftMode:  string(models.ShiftModeDouble),
				StartClock: "08:00",
				EndClock:   "16:00",
			},
			{
				ProfileId:  opener.ID,
				ShiftDate:  tomorrow.Format("2006-01-02"),
				ShiftType:  string(models.ShiftTypeClose),
				ShiftMode:  string(models.ShiftModeDouble),
				StartClock: "15:30",
				EndClock:   "23:00",
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateSchedule double day: %v", err)
	}
	if err := models.PublishSchedule(adminCtx, sched2.ID); err != nil {
		t.Fatalf("PublishSchedule double day: %v", err)
	}

	var openRow models.ScheduledShift
	if err := config.GetDB().WithContext(adminCtx).
		Where("schedule_id = ? AND shift_type = ?", sched2.ID, models.ShiftTypeOpen).
		First(&openRow).Error; err != nil {
		t.Fatalf("fetch open row: %v", err)
	}
	doubleShift := models.Shift{
		StoreId:          store2.ID,
		ProfileId:        opener.ID,
		ShiftType:        models.ShiftTypeDouble,
		PlannedStartAt:   tomorrow.Add(9 * time.Hour),
		RawStartAt:       tomorrow.Add(9 * time.Hour),
		StartedAt:        tomorrow.Add(9 * time.Hour),
		ScheduledShiftId: &openRow.ID,
		ShiftSource:      models.ShiftSourceSchedule,
	}
	if err := config.GetDB().WithContext(adminCtx).Create(&doubleShift).Error; err != nil {
		t.Fatalf("create double shift: %v", err)
	}

	opensAt, err := models.CloseoutOpensAt(adminCtx, store2, &doubleShift, tomorrow)
	if err != nil {
		t.Fatalf("CloseoutOpensAt: %v", err)
	}
	wantOpensAt := tomorrow.Add(22*time.Hour + 30*time.Minute)
	if !opensAt.Equal(wantOpensAt) {
		t.Fatalf("closeout opens at %v, want %v (close row 23:00 end less 30m)", opensAt, wantOpensAt)
	}

	openerCtx := utils.SetProfileIdInContext(context.Background(), opener.ID)
	openerCtx = utils.SetStoreIdInContext(openerCtx, store2.ID)
	if _, err := models.SaveCloseoutDraft(openerCtx, &models.NewCloseoutDraft{
		StoreId:           store2.ID,
		ShiftId:           doubleShift.ID,
		Step:              1,
		PriorXReportCents: &priorX,
	}); err == nil || !strings.Contains(err.Error(), "safe closeout opens at") {
		t.Fatalf("early closeout attempt = %v, want opens-at rejection", err)
	}
}

func startRedisContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("shiftdesk-test-redis-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-p", "127.0.0.1:0:6379",
		"redis:7-alpine",
	)
	if err != nil {
		t.Fatalf("start redis container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "6379/tcp")
	if err != nil {
		t.Fatalf("redis docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "redis-cli", "ping")
		if err == nil {
			return name, port
		}
		time.Sleep(250 * time.Millisecond)
	}
	t.Fatalf("redis did not become ready")
	return "", ""
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("shiftdesk-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=shiftdesk_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	// wait until ready
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	// Example: "127.0.0.1:49154\n"
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
