package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"reminders-backend/internal/reminder/domain"
	userdomain "reminders-backend/internal/user/domain"
	"reminders-backend/pkg/googleauth"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.October, 18, 21, 0, 0, 0, time.UTC)

type harness struct {
	users   *fakeUserRepo
	records *fakeRecordRepo
	minter  *fakeMinter
	sender  *fakeSender
	factory *senderFactory
	uc      ReminderUsecase
}

func newHarness(users []userdomain.User, opts Options) *harness {
	h := &harness{
		users:   &fakeUserRepo{users: users},
		records: newFakeRecordRepo(),
		minter:  &fakeMinter{},
		sender:  &fakeSender{failFor: map[string]bool{}},
	}
	h.factory = &senderFactory{sender: h.sender}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	h.uc = NewReminderUsecase(h.users, h.records, h.minter, h.factory.build, nil, opts)
	return h
}

func TestRunConsumptionScenario(t *testing.T) {
	h := newHarness([]userdomain.User{
		{ID: "A", FCMToken: token("tA")},
		{ID: "B"},
		{ID: "C", FCMToken: token("tC")},
	}, Options{})
	h.records.add("A", domain.Request{Kind: domain.KindConsumption}, "2026-10-18")

	req, err := domain.ParseRequest("", "")
	require.NoError(t, err)
	summary, err := h.uc.Run(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, h.sender.sent, 1)
	assert.Equal(t, "tC", h.sender.sent[0].token)
	assert.Equal(t, "¡No olvides tu registro de hoy!", h.sender.sent[0].notification.Title)
	assert.Equal(t, "Abre la app y marca tu día sin consumo 💪", h.sender.sent[0].notification.Body)
	assert.Equal(t, "/registro", h.sender.sent[0].notification.Data["route"])

	assert.Equal(t, "2026-10-18", summary.Date)
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.Candidates, "B has no token and is not a candidate")
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, []domain.Outcome{
		{UserID: "A", Status: domain.OutcomeSkipped},
		{UserID: "C", Status: domain.OutcomeSent, MessageID: "projects/p/messages/tC"},
	}, summary.Outcomes)
	assert.Equal(t, 2, h.records.callCount(), "B is never looked up")
}

func TestRunMoodSlotScopedDedup(t *testing.T) {
	h := newHarness([]userdomain.User{{ID: "D", FCMToken: token("tD")}}, Options{})
	h.records.add("D", domain.Request{Kind: domain.KindMood, Slot: domain.SlotMorning}, "2026-10-18")

	req, err := domain.ParseRequest("mood", "afternoon")
	require.NoError(t, err)
	summary, err := h.uc.Run(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, h.sender.sent, 1)
	want := domain.Compose(domain.Request{Kind: domain.KindMood, Slot: domain.SlotAfternoon})
	assert.Equal(t, "tD", h.sender.sent[0].token)
	assert.Equal(t, want.Title, h.sender.sent[0].notification.Title)
	assert.Equal(t, want.Body, h.sender.sent[0].notification.Body)
	assert.Equal(t, "afternoon", h.sender.sent[0].notification.Data["slot"])
	assert.Equal(t, 1, summary.Sent)
}

func TestRunMintsOnceRegardlessOfCandidates(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			users := make([]userdomain.User, n)
			for i := range users {
				users[i] = userdomain.User{ID: fmt.Sprintf("u%d", i), FCMToken: token(fmt.Sprintf("t%d", i))}
			}
			h := newHarness(users, Options{Concurrency: 3})

			summary, err := h.uc.Run(context.Background(), domain.Request{Kind: domain.KindConsumption})
			require.NoError(t, err)

			assert.Equal(t, 1, h.minter.calls)
			require.Len(t, h.factory.creds, 1)
			assert.Equal(t, "ya29.shared", h.factory.creds[0].AccessToken)
			assert.Equal(t, n, h.sender.sentCount())
			assert.Equal(t, n, summary.Sent)
		})
	}
}

func TestRunRejectsInvalidRequestBeforeAnyIO(t *testing.T) {
	for _, req := range []domain.Request{
		{Kind: "foo"},
		{Kind: domain.KindMood, Slot: "night"},
	} {
		h := newHarness([]userdomain.User{{ID: "A", FCMToken: token("tA")}}, Options{})

		_, err := h.uc.Run(context.Background(), req)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidKind) || errors.Is(err, domain.ErrInvalidSlot))

		assert.Zero(t, h.users.calls)
		assert.Zero(t, h.records.callCount())
		assert.Zero(t, h.minter.calls)
		assert.Zero(t, h.sender.sentCount())
	}
}

func TestRunUserFetchErrorIsFatal(t *testing.T) {
	h := newHarness(nil, Options{})
	h.users.err = errors.New("relation \"usuarios\" does not exist")

	_, err := h.uc.Run(context.Background(), domain.Request{Kind: domain.KindConsumption})
	assert.ErrorIs(t, err, ErrUserFetch)
	assert.Zero(t, h.minter.calls)
}

func TestRunMintErrorIsFatal(t *testing.T) {
	h := newHarness([]userdomain.User{{ID: "A", FCMToken: token("tA")}}, Options{})
	h.minter.err = errMint

	_, err := h.uc.Run(context.Background(), domain.Request{Kind: domain.KindConsumption})

	var credErr *googleauth.CredentialError
	require.ErrorAs(t, err, &credErr)
	assert.Empty(t, h.factory.creds)
	assert.Zero(t, h.records.callCount())
	assert.Zero(t, h.sender.sentCount())
}

func TestRunSenderSetupErrorIsFatal(t *testing.T) {
	h := newHarness([]userdomain.User{{ID: "A", FCMToken: token("tA")}}, Options{})
	h.factory.err = errors.New("no project")

	_, err := h.uc.Run(context.Background(), domain.Request{Kind: domain.KindConsumption})
	assert.ErrorIs(t, err, ErrSenderSetup)
	assert.Zero(t, h.sender.sentCount())
}

func TestRunSendFailureIsIsolated(t *testing.T) {
	h := newHarness([]userdomain.User{
		{ID: "A", FCMToken: token("tA")},
		{ID: "B", FCMToken: token("tB")},
		{ID: "C", FCMToken: token("tC")},
	}, Options{Concurrency: 2})
	h.sender.failFor["tB"] = true

	summary, err := h.uc.Run(context.Background(), domain.Request{Kind: domain.KindConsumption})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, domain.OutcomeFailed, summary.Outcomes[1].Status)
	assert.Equal(t, "B", summary.Outcomes[1].UserID)
	assert.Contains(t, summary.Outcomes[1].Error, "UNREGISTERED")
	assert.Equal(t, 2, h.sender.sentCount())
}

func TestRunRecordLookupErrorIsFatal(t *testing.T) {
	h := newHarness([]userdomain.User{
		{ID: "A", FCMToken: token("tA")},
		{ID: "B", FCMToken: token("tB")},
	}, Options{})
	h.records.failFor = "A"

	summary, err := h.uc.Run(context.Background(), domain.Request{Kind: domain.KindConsumption})
	assert.ErrorIs(t, err, ErrRecordLookup)
	assert.Nil(t, summary)
}

func TestRunOutcomesKeepCandidateOrder(t *testing.T) {
	users := make([]userdomain.User, 25)
	for i := range users {
		users[i] = userdomain.User{ID: fmt.Sprintf("u%02d", i), FCMToken: token(fmt.Sprintf("t%02d", i))}
	}
	h := newHarness(users, Options{Concurrency: 4})
	for i := 0; i < len(users); i += 3 {
		h.records.add(users[i].ID, domain.Request{Kind: domain.KindConsumption}, "2026-10-18")
	}

	summary, err := h.uc.Run(context.Background(), domain.Request{Kind: domain.KindConsumption})
	require.NoError(t, err)

	require.Len(t, summary.Outcomes, len(users))
	for i, o := range summary.Outcomes {
		assert.Equal(t, users[i].ID, o.UserID)
		if i%3 == 0 {
			assert.Equal(t, domain.OutcomeSkipped, o.Status, o.UserID)
		} else {
			assert.Equal(t, domain.OutcomeSent, o.Status, o.UserID)
		}
	}
	assert.Equal(t, 9, summary.Skipped)
	assert.Equal(t, 16, summary.Sent)
}

func TestRunUsesConfiguredTimezoneForToday(t *testing.T) {
	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	h := newHarness([]userdomain.User{{ID: "A", FCMToken: token("tA")}}, Options{
		Location: loc,
		Now:      func() time.Time { return time.Date(2026, time.October, 18, 2, 0, 0, 0, time.UTC) },
	})

	summary, err := h.uc.Run(context.Background(), domain.Request{Kind: domain.KindConsumption})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", summary.Date)
	assert.Equal(t, []string{"2026-10-17"}, h.records.dates)
}

func TestRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	h := newHarness([]userdomain.User{
		{ID: "A", FCMToken: token("tA")},
		{ID: "B", FCMToken: token("tB")},
	}, Options{Metrics: metrics})
	h.sender.failFor["tB"] = true

	req := domain.Request{Kind: domain.KindMood, Slot: domain.SlotEvening}
	_, err := h.uc.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("mood", "evening", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.notifications.WithLabelValues("mood", "evening", "sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.notifications.WithLabelValues("mood", "evening", "failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.notifications.WithLabelValues("mood", "evening", "skipped")))

	h.minter.err = errMint
	_, err = h.uc.Run(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.runs.WithLabelValues("mood", "evening", "credential_error")))
}
