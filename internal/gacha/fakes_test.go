package gacha

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/daily-gacha-backend/internal/auth"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/apperr"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/clock"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/config"
	"github.com/SlpAus/daily-gacha-backend/internal/platform/lock"
	"github.com/SlpAus/daily-gacha-backend/internal/user"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var jst = time.FixedZone("JST", 9*60*60)

// fakeUsers 是内存中的 user.Store，saveErrs 按调用顺序注入 Save 的错误
type fakeUsers struct {
	mu        sync.Mutex
	byID      map[string]user.User
	saveErrs  []error
	saveCalls int
}

func newFakeUsers(users ...user.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]user.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, apperr.NotFound("user not found")
	}
	return u, nil
}

func (f *fakeUsers) FindBySubject(_ context.Context, subject string) (user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Subject == subject {
			return u, nil
		}
	}
	return user.User{}, apperr.NotFound("user not found")
}

func (f *fakeUsers) Save(_ context.Context, u user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.saveCalls
	f.saveCalls++
	if call < len(f.saveErrs) && f.saveErrs[call] != nil {
		return f.saveErrs[call]
	}
	if _, ok := f.byID[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) Create(_ context.Context, u user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) point(id string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byID[id].Point
}

// fakeEvents 是内存中的 EventStore，beforeCreate 在写入前同步调用
type fakeEvents struct {
	mu           sync.Mutex
	events       []GachaEvent
	createErr    error
	findErr      error
	beforeCreate func()
}

func (f *fakeEvents) FindLatestByUserType(_ context.Context, userID string, gachaType GachaType) (GachaEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return GachaEvent{}, f.findErr
	}
	var latest *GachaEvent
	for i := range f.events {
		e := &f.events[i]
		if e.UserID != userID || e.GachaType != gachaType {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			latest = e
		}
	}
	if latest == nil {
		return GachaEvent{}, apperr.NotFound("gacha event not found")
	}
	return *latest, nil
}

func (f *fakeEvents) Create(_ context.Context, event GachaEvent) error {
	if f.beforeCreate != nil {
		f.beforeCreate()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// fixedRange 总是返回同一个值，并记录请求的区间
type fixedRange struct {
	n      int
	lo, hi int
}

func (r *fixedRange) Range(lo, hi int) int {
	r.lo, r.hi = lo, hi
	return r.n
}

type heldLocker struct{}

func (heldLocker) Lock(context.Context, string) (func(), error) {
	return nil, lock.ErrHeld
}

type fixture struct {
	svc    *Service
	users  *fakeUsers
	events *fakeEvents
	clock  *clock.Fixed
	rng    *fixedRange
	logs   *observer.ObservedLogs
}

const (
	testUserID  = "user-1"
	testSubject = "auth0|alice"
)

var alice = auth.Authenticated(auth.AuthUser{Subject: testSubject})

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{
		users:  newFakeUsers(user.User{ID: testUserID, Subject: testSubject, DisplayName: "Alice", Point: 100}),
		events: &fakeEvents{},
		clock:  &clock.Fixed{T: time.Date(2024, 3, 10, 12, 0, 0, 0, jst), Loc: jst},
		rng:    &fixedRange{n: 7},
		logs:   logs,
	}
	f.svc = NewService(f.users, f.events, f.clock, f.rng, nil, zap.New(core), config.GachaConfig{
		MinReward:          5,
		MaxRewardExclusive: 16,
	})
	return f
}
