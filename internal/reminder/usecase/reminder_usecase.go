package usecase

import (
	"context"
	"fmt"
	"time"

	"reminders-backend/internal/reminder/domain"
	"reminders-backend/internal/reminder/repository"
	userdomain "reminders-backend/internal/user/domain"
	userrepo "reminders-backend/internal/user/repository"
	"reminders-backend/pkg/fcm"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Options tunes the dispatch loop. Zero values fall back to defaults.
type Options struct {
	Concurrency int            // parallel eligibility-check-then-send pairs, default 1
	Location    *time.Location // zone that defines "today", default UTC
	Metrics     *Metrics
	Now         func() time.Time
}

// reminderUsecase implements ReminderUsecase
type reminderUsecase struct {
	users       userrepo.UserRepository
	eligibility *EligibilityChecker
	minter      CredentialMinter
	newSender   SenderFactory
	log         *zap.Logger

	concurrency int
	location    *time.Location
	metrics     *Metrics
	now         func() time.Time
}

// NewReminderUsecase creates a new instance of reminderUsecase
func NewReminderUsecase(
	users userrepo.UserRepository,
	records repository.RecordRepository,
	minter CredentialMinter,
	newSender SenderFactory,
	log *zap.Logger,
	opts Options,
) ReminderUsecase {
	uc := &reminderUsecase{
		users:       users,
		eligibility: NewEligibilityChecker(records),
		minter:      minter,
		newSender:   newSender,
		log:         log,
		concurrency: opts.Concurrency,
		location:    opts.Location,
		metrics:     opts.Metrics,
		now:         opts.Now,
	}
	if uc.concurrency < 1 {
		uc.concurrency = 1
	}
	if uc.location == nil {
		uc.location = time.UTC
	}
	if uc.now == nil {
		uc.now = time.Now
	}
	if uc.log == nil {
		uc.log = zap.NewNop()
	}
	return uc
}

func (u *reminderUsecase) Run(ctx context.Context, req domain.Request) (*domain.Summary, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	started := u.now().In(u.location)
	summary := &domain.Summary{
		RunID:     uuid.NewString(),
		Kind:      req.Kind,
		Slot:      req.Slot,
		Date:      started.Format(domain.DateLayout),
		StartedAt: started,
	}
	log := u.log.With(
		zap.String("run_id", summary.RunID),
		zap.String("kind", string(req.Kind)),
		zap.String("slot", string(req.Slot)),
		zap.String("date", summary.Date),
	)

	users, err := u.users.FindWithPushToken(ctx)
	if err != nil {
		u.metrics.observeRun(req, "db_error")
		log.Error("fetch candidate users failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrUserFetch, err)
	}
	candidates := withPushToken(users)
	log.Info("candidates loaded", zap.Int("count", len(candidates)))

	// One credential per invocation, even when there is nobody to notify.
	cred, err := u.minter.Mint(ctx)
	if err != nil {
		u.metrics.observeRun(req, "credential_error")
		log.Error("mint credential failed", zap.Error(err))
		return nil, err
	}

	sender, err := u.newSender(ctx, cred)
	if err != nil {
		u.metrics.observeRun(req, "sender_error")
		log.Error("push sender setup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSenderSetup, err)
	}

	n := domain.Compose(req)
	payload := fcm.NotificationData{
		Title: n.Title,
		Body:  n.Body,
		Data:  n.Data(req),
	}

	outcomes := make([]domain.Outcome, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.concurrency)
	for i, user := range candidates {
		g.Go(func() error {
			outcome, err := u.dispatchOne(gctx, log, user, req, summary.Date, sender, payload)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		u.metrics.observeRun(req, "db_error")
		log.Error("dispatch aborted", zap.Error(err))
		return nil, err
	}

	summary.Outcomes = outcomes
	summary.Tally()
	u.metrics.observeRun(req, "ok")
	u.metrics.observeSummary(req, summary)
	log.Info("dispatch finished",
		zap.Int("candidates", summary.Candidates),
		zap.Int("sent", summary.Sent),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// dispatchOne checks and, when owed, sends one user's reminder. Only store
// errors are returned; a failed send becomes a failed outcome.
func (u *reminderUsecase) dispatchOne(
	ctx context.Context,
	log *zap.Logger,
	user userdomain.User,
	req domain.Request,
	date string,
	sender Sender,
	payload fcm.NotificationData,
) (domain.Outcome, error) {
	outcome := domain.Outcome{UserID: user.ID}

	eligible, err := u.eligibility.IsEligible(ctx, user.ID, req, date)
	if err != nil {
		return outcome, err
	}
	if !eligible {
		outcome.Status = domain.OutcomeSkipped
		log.Debug("already logged today, skipping", zap.String("user_id", user.ID))
		return outcome, nil
	}

	messageID, err := sender.SendToDevice(ctx, user.PushToken(), payload)
	if err != nil {
		outcome.Status = domain.OutcomeFailed
		outcome.Error = err.Error()
		log.Warn("send failed", zap.String("user_id", user.ID), zap.Error(err))
		return outcome, nil
	}

	outcome.Status = domain.OutcomeSent
	outcome.MessageID = messageID
	log.Info("reminder sent", zap.String("user_id", user.ID), zap.String("message_id", messageID))
	return outcome, nil
}

func withPushToken(users []userdomain.User) []userdomain.User {
	out := make([]userdomain.User, 0, len(users))
	for _, u := range users {
		if u.PushToken() != "" {
			out = append(out, u)
		}
	}
	return out
}
