package usecase

import (
	"context"
	"errors"
	"sync"

	"reminders-backend/internal/reminder/domain"
	userdomain "reminders-backend/internal/user/domain"
	"reminders-backend/pkg/fcm"
	"reminders-backend/pkg/googleauth"

	"golang.org/x/oauth2"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users []userdomain.User
	err   error
	calls int
}

func (f *fakeUserRepo) FindWithPushToken(context.Context) ([]userdomain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

type recordKey struct {
	userID string
	kind   domain.Kind
	slot   domain.Slot
	date   string
}

type fakeRecordRepo struct {
	mu      sync.Mutex
	records map[recordKey]bool
	failFor string
	calls   int
	dates   []string
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[recordKey]bool{}}
}

func (f *fakeRecordRepo) add(userID string, req domain.Request, date string) {
	f.records[recordKey{userID, req.Kind, req.Slot, date}] = true
}

func (f *fakeRecordRepo) Exists(_ context.Context, userID string, req domain.Request, date string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.dates = append(f.dates, date)
	if userID == f.failFor {
		return false, errors.New("connection reset")
	}
	return f.records[recordKey{userID, req.Kind, req.Slot, date}], nil
}

func (f *fakeRecordRepo) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeMinter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeMinter) Mint(context.Context) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{AccessToken: "ya29.shared", TokenType: "Bearer"}, nil
}

type sentMessage struct {
	token        string
	notification fcm.NotificationData
}

type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	failFor map[string]bool
}

func (f *fakeSender) SendToDevice(_ context.Context, token string, n fcm.NotificationData) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[token] {
		return "", errors.New("UNREGISTERED")
	}
	f.sent = append(f.sent, sentMessage{token: token, notification: n})
	return "projects/p/messages/" + token, nil
}

func (f *fakeSender) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type senderFactory struct {
	sender *fakeSender
	creds  []*oauth2.Token
	err    error
}

func (f *senderFactory) build(_ context.Context, cred *oauth2.Token) (Sender, error) {
	f.creds = append(f.creds, cred)
	if f.err != nil {
		return nil, f.err
	}
	return f.sender, nil
}

var errMint = &googleauth.CredentialError{Op: "exchange", Err: errors.New("token endpoint returned 400")}

func token(s string) *string { return &s }
