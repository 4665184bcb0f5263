package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"liftlog/internal/adapter/memory"
	"liftlog/internal/app"
	"liftlog/internal/domain"
)

// 2026-03-04 is a Wednesday.
var (
	testNow  = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	monday   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tuesday  = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	friday   = time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	me       = &domain.User{ID: "u1", Email: "me@example.com"}
	attacker = &domain.User{ID: "evil", Email: "attacker@evil.com"}
)

type mockWorkoutRepo struct {
	listFn   func(ctx context.Context, userID string) ([]domain.Workout, error)
	putFn    func(ctx context.Context, id string, w domain.Workout) (time.Time, error)
	deleteFn func(ctx context.Context, id string) error

	listCalls int
}

func (m *mockWorkoutRepo) ListWorkouts(ctx context.Context, userID string) ([]domain.Workout, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockWorkoutRepo) PutWorkout(ctx context.Context, id string, w domain.Workout) (time.Time, error) {
	if m.putFn != nil {
		return m.putFn(ctx, id, w)
	}
	return testNow, nil
}

func (m *mockWorkoutRepo) DeleteWorkout(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockProgramRepo struct {
	getFn func(ctx context.Context, userID string) (*domain.Program, error)
	putFn func(ctx context.Context, userID string, p domain.Program) error

	getCalls int
}

func (m *mockProgramRepo) GetProgram(ctx context.Context, userID string) (*domain.Program, error) {
	m.getCalls++
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProgramRepo) PutProgram(ctx context.Context, userID string, p domain.Program) error {
	if m.putFn != nil {
		return m.putFn(ctx, userID, p)
	}
	return nil
}

func newTracker(t *testing.T, wr domain.WorkoutRepository, pr domain.ProgramRepository, signOut func(context.Context) error) *app.Tracker {
	t.Helper()
	if wr == nil || pr == nil {
		db := memory.New()
		if wr == nil {
			wr = db
		}
		if pr == nil {
			pr = db
		}
	}
	return app.NewTracker(app.TrackerDeps{
		Workouts: wr,
		Programs: pr,
		Allow:    domain.NewAllowList("me@example.com", "friend@example.com"),
		SignOut:  signOut,
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
}

func signIn(t *testing.T, tr *app.Tracker) {
	t.Helper()
	if err := tr.OnAuthStateChanged(context.Background(), me); err != nil {
		t.Fatalf("sign in: %v", err)
	}
}

func TestTracker_SignInLoadsOnce(t *testing.T) {
	wr := &mockWorkoutRepo{
		listFn: func(_ context.Context, userID string) ([]domain.Workout, error) {
			if userID != "u1" {
				t.Fatalf("unexpected user id %s", userID)
			}
			return []domain.Workout{{UserID: "u1", Date: "2026-03-02", DayType: domain.DayMonday}}, nil
		},
	}
	pr := &mockProgramRepo{}
	tr := newTracker(t, wr, pr, nil)

	if st := tr.State(); st.AuthChecked || st.User != nil {
		t.Fatalf("fresh tracker should be unchecked and signed out: %+v", st)
	}

	signIn(t, tr)
	signIn(t, tr) // session restored on a later request

	if wr.listCalls != 1 || pr.getCalls != 1 {
		t.Fatalf("expected one load each, got workouts=%d program=%d", wr.listCalls, pr.getCalls)
	}
	st := tr.State()
	if st.User == nil || st.User.ID != "u1" || !st.AuthChecked || st.Loading {
		t.Fatalf("unexpected state %+v", st)
	}
	if _, ok := tr.Workout("2026-03-02"); !ok {
		t.Fatal("expected loaded workout in cache")
	}
}

func TestTracker_DeniedIdentity(t *testing.T) {
	wr := &mockWorkoutRepo{}
	pr := &mockProgramRepo{}
	signedOut := false
	tr := newTracker(t, wr, pr, func(context.Context) error {
		signedOut = true
		return nil
	})

	err := tr.OnAuthStateChanged(context.Background(), attacker)
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	st := tr.State()
	if st.User != nil || !st.AuthChecked {
		t.Fatalf("expected checked and signed out, got %+v", st)
	}
	if !signedOut {
		t.Error("expected provider sign-out")
	}
	if wr.listCalls != 0 || pr.getCalls != 0 {
		t.Fatalf("no loads expected, got workouts=%d program=%d", wr.listCalls, pr.getCalls)
	}
	notices := tr.DrainNotices()
	if len(notices) != 1 || notices[0].Kind != app.NoticeDenied {
		t.Fatalf("expected a denial notice, got %+v", notices)
	}
	if len(tr.DrainNotices()) != 0 {
		t.Fatal("notices should be drained")
	}
}

func TestTracker_SaveWorkoutRoundTrip(t *testing.T) {
	var stored domain.Workout
	var storedID string
	written := time.Date(2026, 3, 2, 19, 30, 0, 0, time.UTC)
	wr := &mockWorkoutRepo{
		putFn: func(_ context.Context, id string, w domain.Workout) (time.Time, error) {
			storedID, stored = id, w
			return written, nil
		},
	}
	tr := newTracker(t, wr, nil, nil)
	signIn(t, tr)

	if _, err := tr.OpenDay(monday); err != nil {
		t.Fatalf("OpenDay: %v", err)
	}
	if _, err := tr.SetWeight(0, 0, "60"); err != nil {
		t.Fatalf("SetWeight: %v", err)
	}
	if _, err := tr.UpdateDraft(app.FieldNotes, "good session"); err != nil {
		t.Fatalf("UpdateDraft: %v", err)
	}
	draft, _ := tr.Draft()

	if err := tr.SaveDraft(context.Background()); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if _, open := tr.Draft(); open {
		t.Fatal("editor should close after save")
	}

	if storedID != "u1_2026-03-02" {
		t.Fatalf("unexpected document id %s", storedID)
	}
	if stored.UserID != "u1" || stored.Date != "2026-03-02" || !stored.UpdatedAt.IsZero() {
		t.Fatalf("unexpected payload header %+v", stored)
	}

	cached, ok := tr.Workout("2026-03-02")
	if !ok {
		t.Fatal("expected cache entry after save")
	}
	if !cached.UpdatedAt.Equal(written) {
		t.Errorf("expected store timestamp %v, got %v", written, cached.UpdatedAt)
	}

	want := draft.Workout
	want.UserID, want.Date = "u1", "2026-03-02"
	cached.UpdatedAt = time.Time{}
	if !reflect.DeepEqual(cached, want) {
		t.Fatalf("cache differs from submitted payload:\n got %+v\nwant %+v", cached, want)
	}
}

func TestTracker_SaveFailureLeavesCache(t *testing.T) {
	wr := &mockWorkoutRepo{
		putFn: func(context.Context, string, domain.Workout) (time.Time, error) {
			return time.Time{}, errors.New("unavailable")
		},
	}
	tr := newTracker(t, wr, nil, nil)
	signIn(t, tr)

	_, _ = tr.OpenDay(friday)
	_, _ = tr.SetWeight(0, 0, "20")
	err := tr.SaveDraft(context.Background())
	if !errors.Is(err, domain.ErrRemoteWrite) {
		t.Fatalf("expected ErrRemoteWrite, got %v", err)
	}
	if _, ok := tr.Workout("2026-03-06"); ok {
		t.Fatal("cache must not change when the write fails")
	}
	if _, open := tr.Draft(); open {
		t.Fatal("editor should close even when the write fails")
	}
	if n := tr.DrainNotices(); len(n) != 1 || n[0].Kind != app.NoticeError {
		t.Fatalf("expected an error notice, got %+v", n)
	}
}

func TestTracker_EditingDraftDoesNotTouchCache(t *testing.T) {
	tr := newTracker(t, nil, nil, nil)
	signIn(t, tr)

	_, _ = tr.OpenDay(monday)
	_, _ = tr.SetWeight(0, 0, "60")
	_ = tr.SaveDraft(context.Background())

	d, err := tr.OpenDay(monday)
	if err != nil {
		t.Fatalf("OpenDay: %v", err)
	}
	if d.Workout.Exercises[0].Weights[0] != "60" {
		t.Fatalf("existing workout not loaded: %+v", d.Workout.Exercises[0])
	}
	_, _ = tr.SetWeight(0, 0, "65")

	cached, _ := tr.Workout("2026-03-02")
	if cached.Exercises[0].Weights[0] != "60" {
		t.Fatalf("unsaved edit leaked into the cache: %v", cached.Exercises[0].Weights)
	}
	tr.CloseDraft()
	if _, open := tr.Draft(); open {
		t.Fatal("expected editor closed")
	}
}

func TestTracker_DeleteThenFreshDraft(t *testing.T) {
	tr := newTracker(t, nil, nil, nil)
	signIn(t, tr)

	_, _ = tr.OpenDay(monday)
	_, _ = tr.SetWeight(1, 1, "45")
	_, _ = tr.UpdateDraft(app.FieldCardioTime, "25")
	if err := tr.SaveDraft(context.Background()); err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}

	_, _ = tr.OpenDay(monday)
	deleted, err := tr.DeleteDraft(context.Background(), false)
	if err != nil || deleted {
		t.Fatalf("unconfirmed delete should do nothing, got %v, %v", deleted, err)
	}
	if _, ok := tr.Workout("2026-03-02"); !ok {
		t.Fatal("unconfirmed delete removed the workout")
	}

	deleted, err = tr.DeleteDraft(context.Background(), true)
	if err != nil || !deleted {
		t.Fatalf("DeleteDraft: %v, %v", deleted, err)
	}
	if _, ok := tr.Workout("2026-03-02"); ok {
		t.Fatal("expected cache entry removed")
	}

	d, err := tr.OpenDay(monday)
	if err != nil {
		t.Fatalf("OpenDay: %v", err)
	}
	fresh := domain.NewWorkout(domain.DayMonday, domain.DefaultProgram().Monday)
	if !reflect.DeepEqual(d.Workout, fresh) {
		t.Fatalf("expected a fresh draft, got %+v", d.Workout)
	}
}

func TestTracker_DeleteFailureKeepsCache(t *testing.T) {
	db := memory.New()
	wr := &mockWorkoutRepo{
		putFn:    db.PutWorkout,
		deleteFn: func(context.Context, string) error { return errors.New("unavailable") },
	}
	tr := newTracker(t, wr, db, nil)
	signIn(t, tr)

	_, _ = tr.OpenDay(monday)
	_ = tr.SaveDraft(context.Background())
	_, _ = tr.OpenDay(monday)

	_, err := tr.DeleteDraft(context.Background(), true)
	if !errors.Is(err, domain.ErrRemoteWrite) {
		t.Fatalf("expected ErrRemoteWrite, got %v", err)
	}
	if _, ok := tr.Workout("2026-03-02"); !ok {
		t.Fatal("cache must keep the workout when the delete fails")
	}
}

func TestTracker_OpenNonTrainingDay(t *testing.T) {
	tr := newTracker(t, nil, nil, nil)
	signIn(t, tr)
	before := tr.Workouts()

	for _, d := range []time.Time{tuesday, tuesday.AddDate(0, 0, 2), tuesday.AddDate(0, 0, 4), tuesday.AddDate(0, 0, 5)} {
		if _, err := tr.OpenDay(d); !errors.Is(err, domain.ErrInvalidDay) {
			t.Fatalf("OpenDay(%s): expected ErrInvalidDay, got %v", domain.DateKey(d), err)
		}
	}
	if _, open := tr.Draft(); open {
		t.Fatal("no draft expected for a non-training day")
	}
	if !reflect.DeepEqual(before, tr.Workouts()) {
		t.Fatal("cache changed")
	}
	if n := tr.DrainNotices(); len(n) != 4 || n[0].Kind != app.NoticeWarning {
		t.Fatalf("expected a warning per attempt, got %+v", n)
	}
}

func TestTracker_OpenDayRequiresUser(t *testing.T) {
	tr := newTracker(t, nil, nil, nil)
	if _, err := tr.OpenDay(monday); !errors.Is(err, domain.ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

func TestTracker_SetWeightErrors(t *testing.T) {
	tr := newTracker(t, nil, nil, nil)
	signIn(t, tr)

	if _, err := tr.SetWeight(0, 0, "1"); !errors.Is(err, domain.ErrNoDraft) {
		t.Fatalf("expected ErrNoDraft, got %v", err)
	}
	_, _ = tr.OpenDay(monday)
	if _, err := tr.SetWeight(0, 9, "1"); !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := tr.UpdateDraft(app.FieldName, "x"); !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestTracker_NoUserOperationsAreNoops(t *testing.T) {
	wr := &mockWorkoutRepo{
		putFn: func(context.Context, string, domain.Workout) (time.Time, error) {
			t.Fatal("store must not be called without a user")
			return time.Time{}, nil
		},
		deleteFn: func(context.Context, string) error {
			t.Fatal("store must not be called without a user")
			return nil
		},
	}
	pr := &mockProgramRepo{
		putFn: func(context.Context, string, domain.Program) error {
			t.Fatal("store must not be called without a user")
			return nil
		},
	}
	tr := newTracker(t, wr, pr, nil)
	ctx := context.Background()

	if err := tr.SaveWorkout(ctx, monday, domain.Workout{}); err != nil {
		t.Fatal(err)
	}
	if err := tr.DeleteWorkout(ctx, monday); err != nil {
		t.Fatal(err)
	}
	if err := tr.SaveProgram(ctx, domain.DefaultProgram()); err != nil {
		t.Fatal(err)
	}
	if err := tr.LoadWorkouts(ctx); err != nil || wr.listCalls != 0 {
		t.Fatalf("LoadWorkouts: %v, calls=%d", err, wr.listCalls)
	}
}

func TestTracker_LoadWorkoutsFailureKeepsCache(t *testing.T) {
	fail := false
	wr := &mockWorkoutRepo{
		listFn: func(context.Context, string) ([]domain.Workout, error) {
			if fail {
				return nil, errors.New("unavailable")
			}
			return []domain.Workout{{UserID: "u1", Date: "2026-03-06"}}, nil
		},
	}
	tr := newTracker(t, wr, &mockProgramRepo{}, nil)
	signIn(t, tr)

	fail = true
	err := tr.LoadWorkouts(context.Background())
	if !errors.Is(err, domain.ErrRemoteRead) {
		t.Fatalf("expected ErrRemoteRead, got %v", err)
	}
	if _, ok := tr.Workout("2026-03-06"); !ok {
		t.Fatal("cache should be untouched after a failed reload")
	}
	if tr.State().Loading {
		t.Fatal("loading flag should clear after a failure")
	}
	if n := tr.DrainNotices(); len(n) != 1 {
		t.Fatalf("expected one notice, got %+v", n)
	}
}

func TestTracker_LoadProgram(t *testing.T) {
	t.Run("absent keeps default", func(t *testing.T) {
		tr := newTracker(t, &mockWorkoutRepo{}, &mockProgramRepo{}, nil)
		signIn(t, tr)
		if !reflect.DeepEqual(tr.Program().Program, domain.DefaultProgram()) {
			t.Fatal("expected the default program")
		}
	})

	t.Run("failure is silent", func(t *testing.T) {
		pr := &mockProgramRepo{
			getFn: func(context.Context, string) (*domain.Program, error) {
				return nil, errors.New("unavailable")
			},
		}
		tr := newTracker(t, &mockWorkoutRepo{}, pr, nil)
		signIn(t, tr)
		if !reflect.DeepEqual(tr.Program().Program, domain.DefaultProgram()) {
			t.Fatal("expected the default program")
		}
		if n := tr.DrainNotices(); len(n) != 0 {
			t.Fatalf("program load failures are not shown, got %+v", n)
		}
	})

	t.Run("stored program wins", func(t *testing.T) {
		stored := domain.DefaultProgram()
		stored.Monday.Name = "Push"
		pr := &mockProgramRepo{
			getFn: func(context.Context, string) (*domain.Program, error) { return &stored, nil },
		}
		tr := newTracker(t, &mockWorkoutRepo{}, pr, nil)
		signIn(t, tr)
		if tr.Program().Program.Monday.Name != "Push" {
			t.Fatal("expected stored program")
		}
	})
}

func TestTracker_ProgramEditScenario(t *testing.T) {
	db := memory.New()
	tr := newTracker(t, db, db, nil)
	signIn(t, tr)

	if n := len(tr.Program().Program.Monday.Exercises); n != 4 {
		t.Fatalf("default Monday has %d exercises", n)
	}

	tr.SetEditMode(true)
	if _, err := tr.StartEditing(domain.DayMonday); err != nil {
		t.Fatalf("StartEditing: %v", err)
	}
	e, err := tr.AddExercise()
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	added := e.Exercises[len(e.Exercises)-1]
	if added.Sets != 4 || added.Reps != "8-10" || added.Name != "" {
		t.Fatalf("unexpected blank exercise %+v", added)
	}
	if _, err := tr.UpdateExercise(4, app.FieldName, "Dips"); err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if _, err := tr.UpdateExercise(4, app.FieldSets, "3"); err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if err := tr.SaveEditedDay(context.Background()); err != nil {
		t.Fatalf("SaveEditedDay: %v", err)
	}

	v := tr.Program()
	if v.EditMode || v.Editing != nil {
		t.Fatal("edit mode should end after save")
	}
	stored, _ := db.GetProgram(context.Background(), "u1")
	if stored == nil || len(stored.Monday.Exercises) != 5 {
		t.Fatalf("expected persisted Monday with 5 exercises, got %+v", stored)
	}
	if len(stored.Wednesday.Exercises) != 4 || len(stored.Friday.Exercises) != 4 {
		t.Fatal("the whole program should be persisted")
	}

	d, err := tr.OpenDay(monday.AddDate(0, 0, 7))
	if err != nil {
		t.Fatalf("OpenDay: %v", err)
	}
	if len(d.Workout.Exercises) != 5 {
		t.Fatalf("expected 5 exercise logs, got %d", len(d.Workout.Exercises))
	}
	if last := d.Workout.Exercises[4]; last.Name != "Dips" || len(last.Weights) != 3 {
		t.Fatalf("unexpected new exercise log %+v", last)
	}
}

func TestTracker_ProgramEditorValidation(t *testing.T) {
	tr := newTracker(t, nil, nil, nil)
	signIn(t, tr)

	if _, err := tr.AddExercise(); !errors.Is(err, domain.ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
	if _, err := tr.StartEditing(domain.DayNone); !errors.Is(err, domain.ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
	if _, err := tr.StartEditing(domain.DayFriday); err != nil {
		t.Fatalf("StartEditing: %v", err)
	}

	for _, v := range []string{"0", "-2", "four", ""} {
		if _, err := tr.UpdateExercise(0, app.FieldSets, v); !errors.Is(err, domain.ErrInvalidSets) {
			t.Fatalf("sets %q: expected ErrInvalidSets, got %v", v, err)
		}
	}
	if _, err := tr.UpdateExercise(10, app.FieldReps, "5"); !errors.Is(err, domain.ErrOutOfRange) {
		t.Fatalf("expected ErrOutOfRange, got %v", err)
	}
	if _, err := tr.UpdateExercise(0, app.FieldNotes, "x"); !errors.Is(err, domain.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	e, err := tr.RemoveExercise(0)
	if err != nil {
		t.Fatalf("RemoveExercise: %v", err)
	}
	if len(e.Exercises) != 3 || e.Exercises[0].Name != "Machine triceps pushdown" {
		t.Fatalf("unexpected exercises after remove %+v", e.Exercises)
	}
	if e, _ = tr.UpdateEditingDay(app.FieldCardio, "30 min bike"); e.Cardio != "30 min bike" {
		t.Fatalf("cardio not updated: %+v", e)
	}

	tr.CancelEditing()
	if tr.Program().Program.Friday.Cardio == "30 min bike" {
		t.Fatal("cancelled edits must not reach the program")
	}
	if err := tr.SaveEditedDay(context.Background()); !errors.Is(err, domain.ErrNotEditing) {
		t.Fatalf("expected ErrNotEditing, got %v", err)
	}
}

func TestTracker_SaveProgramFailureKeepsProgram(t *testing.T) {
	pr := &mockProgramRepo{
		putFn: func(context.Context, string, domain.Program) error { return errors.New("unavailable") },
	}
	tr := newTracker(t, &mockWorkoutRepo{}, pr, nil)
	signIn(t, tr)

	_, _ = tr.StartEditing(domain.DayWednesday)
	_, _ = tr.UpdateEditingDay(app.FieldName, "Pull")
	err := tr.SaveEditedDay(context.Background())
	if !errors.Is(err, domain.ErrRemoteWrite) {
		t.Fatalf("expected ErrRemoteWrite, got %v", err)
	}
	if tr.Program().Program.Wednesday.Name != "Back" {
		t.Fatal("program must only change after a successful write")
	}
}

func TestTracker_SignOutResets(t *testing.T) {
	signOuts := 0
	tr := newTracker(t, nil, nil, func(context.Context) error {
		signOuts++
		return nil
	})
	signIn(t, tr)

	_, _ = tr.OpenDay(monday)
	_ = tr.SaveDraft(context.Background())
	_, _ = tr.StartEditing(domain.DayMonday)
	_, _ = tr.AddExercise()
	_ = tr.SaveEditedDay(context.Background())
	_, _ = tr.OpenDay(friday)

	if err := tr.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	if signOuts != 1 {
		t.Fatalf("expected one provider sign-out, got %d", signOuts)
	}
	if tr.User() != nil || len(tr.Workouts()) != 0 {
		t.Fatal("expected user and cache cleared")
	}
	if _, open := tr.Draft(); open {
		t.Fatal("expected draft cleared")
	}
	if !reflect.DeepEqual(tr.Program().Program, domain.DefaultProgram()) {
		t.Fatal("expected default program after sign-out")
	}
}

func TestTracker_SignOutCallbackRunsUnlocked(t *testing.T) {
	var tr *app.Tracker
	var during *domain.User
	tr = newTracker(t, nil, nil, func(context.Context) error {
		during = tr.User()
		return nil
	})
	signIn(t, tr)

	done := make(chan error, 1)
	go func() { done <- tr.SignOut(context.Background()) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("SignOut: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SignOut held the tracker lock while ending the provider session")
	}
	if during == nil || during.ID != me.ID {
		t.Fatalf("expected the user to be signed in during the callback, got %+v", during)
	}
	if tr.User() != nil {
		t.Fatal("expected signed out")
	}
}

func TestTracker_FailureAfterSignOutQueuesNoNotice(t *testing.T) {
	t.Run("program", func(t *testing.T) {
		var tr *app.Tracker
		pr := &mockProgramRepo{
			putFn: func(ctx context.Context, _ string, _ domain.Program) error {
				_ = tr.SignOut(ctx)
				return errors.New("unavailable")
			},
		}
		tr = newTracker(t, &mockWorkoutRepo{}, pr, nil)
		signIn(t, tr)

		if err := tr.SaveProgram(context.Background(), domain.DefaultProgram()); !errors.Is(err, domain.ErrRemoteWrite) {
			t.Fatalf("expected ErrRemoteWrite, got %v", err)
		}
		if n := tr.DrainNotices(); len(n) != 0 {
			t.Fatalf("expected no notices for the next user, got %v", n)
		}
	})

	t.Run("workout", func(t *testing.T) {
		var tr *app.Tracker
		wr := &mockWorkoutRepo{
			putFn: func(ctx context.Context, _ string, _ domain.Workout) (time.Time, error) {
				_ = tr.SignOut(ctx)
				return time.Time{}, errors.New("unavailable")
			},
		}
		tr = newTracker(t, wr, &mockProgramRepo{}, nil)
		signIn(t, tr)

		w := domain.Workout{}
		if err := tr.SaveWorkout(context.Background(), monday, w); !errors.Is(err, domain.ErrRemoteWrite) {
			t.Fatalf("expected ErrRemoteWrite, got %v", err)
		}
		if n := tr.DrainNotices(); len(n) != 0 {
			t.Fatalf("expected no notices for the next user, got %v", n)
		}
	})
}

func TestTracker_Calendar(t *testing.T) {
	tr := newTracker(t, nil, nil, nil)
	signIn(t, tr)
	_, _ = tr.OpenDay(monday)
	_ = tr.SaveDraft(context.Background())

	v := tr.Calendar()
	if v.Year != 2026 || v.Month != time.March || v.Today != "2026-03-04" {
		t.Fatalf("unexpected header %+v", v)
	}
	// March 2026 starts on a Sunday: 6 blanks, then 31 days.
	if len(v.Weeks) != 6 || len(v.Weeks[0]) != 7 || len(v.Weeks[5]) != 2 {
		t.Fatalf("unexpected grid shape: %d rows", len(v.Weeks))
	}
	for i := 0; i < 6; i++ {
		if !v.Weeks[0][i].Blank {
			t.Fatalf("cell %d should be blank", i)
		}
	}
	sun := v.Weeks[0][6]
	if sun.Date != "2026-03-01" || sun.DayType != domain.DayNone || sun.ProgramName != "" {
		t.Fatalf("unexpected first day %+v", sun)
	}
	mon := v.Weeks[1][0]
	if mon.Date != "2026-03-02" || !mon.HasWorkout || mon.DayType != domain.DayMonday || mon.ProgramName != "Chest" {
		t.Fatalf("unexpected Monday cell %+v", mon)
	}
	if wed := v.Weeks[1][2]; !wed.IsToday || wed.HasWorkout {
		t.Fatalf("unexpected Wednesday cell %+v", wed)
	}

	prev := tr.ShiftMonth(-1)
	if prev.Month != time.February || prev.Year != 2026 {
		t.Fatalf("ShiftMonth(-1) = %d-%d", prev.Year, prev.Month)
	}
	next := tr.ShowMonth(2025, time.December)
	if next.Month != time.December || next.Year != 2025 {
		t.Fatalf("ShowMonth = %d-%d", next.Year, next.Month)
	}
	if tr.ShiftMonth(1).Year != 2026 {
		t.Fatal("shift across the year boundary")
	}
}

func TestTracker_DateKeysUseTrackerLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	db := memory.New()
	tr := app.NewTracker(app.TrackerDeps{
		Workouts: db,
		Programs: db,
		Allow:    domain.NewAllowList("me@example.com"),
		Location: loc,
		Now:      func() time.Time { return testNow },
	})
	signIn(t, tr)

	// 2026-03-01 15:00 UTC is Monday 01:00 on 2026-03-02 in UTC+10.
	d, err := tr.OpenDay(time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("OpenDay: %v", err)
	}
	if d.Date != "2026-03-02" {
		t.Fatalf("expected local date key, got %s", d.Date)
	}
	_ = tr.SaveDraft(context.Background())
	if _, ok := tr.Workout("2026-03-02"); !ok {
		t.Fatal("expected workout under the local date key")
	}
	if err := tr.DeleteWorkout(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, loc)); err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.Workout("2026-03-02"); ok {
		t.Fatal("delete should use the same key as save")
	}
}

func TestRegistry(t *testing.T) {
	built := 0
	r := app.NewRegistry(func(string) *app.Tracker {
		built++
		return newTracker(t, nil, nil, nil)
	})
	a := r.Get("tok-a")
	if r.Get("tok-a") != a || built != 1 {
		t.Fatal("expected the same tracker for the same key")
	}
	if r.Get("tok-b") == a || r.Len() != 2 {
		t.Fatal("expected a separate tracker per key")
	}
	r.Drop("tok-a")
	if r.Len() != 1 {
		t.Fatalf("expected 1 tracker, got %d", r.Len())
	}
}
