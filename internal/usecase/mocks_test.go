//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"classroom-subscription/internal/domain"
	"classroom-subscription/internal/domain/model"
	"classroom-subscription/internal/domain/ports/adapter"
	"classroom-subscription/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// ---- Transaction manager ----

type noTx struct{}

type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, noTx{})
}

type mockEmailGuard struct {
	mu       sync.Mutex
	Reserved []string
}

func (g *mockEmailGuard) Reserve(_ context.Context, _ repository.Tx, email string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Reserved = append(g.Reserved, email)
	return nil
}

// ---- Plan repo ----

type memPlanRepo struct {
	mu    sync.Mutex
	plans map[string]*model.Plan
}

var _ repository.PlanRepository = (*memPlanRepo)(nil)

func newMemPlanRepo() *memPlanRepo {
	return &memPlanRepo{plans: make(map[string]*model.Plan)}
}

func (r *memPlanRepo) Save(_ context.Context, _ repository.Tx, plan *model.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *plan
	r.plans[plan.ID] = &cp
	return nil
}

func (r *memPlanRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPlanRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Plan, 0, len(r.plans))
	for _, p := range r.plans {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPlanRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plans[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

// ---- Signup repo ----

type memSignupRepo struct {
	mu      sync.Mutex
	signups map[string]*model.PendingSignup
}

var _ repository.SignupRepository = (*memSignupRepo)(nil)

func newMemSignupRepo() *memSignupRepo {
	return &memSignupRepo{signups: make(map[string]*model.PendingSignup)}
}

func (r *memSignupRepo) Create(_ context.Context, _ repository.Tx, s *model.PendingSignup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.signups {
		if existing.Email == s.Email {
			return domain.ErrDuplicateEmail
		}
	}
	cp := *s
	r.signups[s.ID] = &cp
	return nil
}

func (r *memSignupRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.PendingSignup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.signups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSignupRepo) FindByEmail(_ context.Context, _ repository.Tx, email string) (*model.PendingSignup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.signups {
		if s.Email == email {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memSignupRepo) SetCheckoutURL(_ context.Context, _ repository.Tx, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.signups[id]
	if !ok {
		return domain.ErrNotFound
	}
	s.CheckoutURL = &url
	return nil
}

func (r *memSignupRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.PendingSignup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.PendingSignup, 0, len(r.signups))
	for _, s := range r.signups {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memSignupRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.signups[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.signups, id)
	return nil
}

func (r *memSignupRepo) DeleteOlderThan(_ context.Context, _ repository.Tx, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.signups {
		if s.CreatedAt.Before(cutoff) {
			delete(r.signups, id)
			n++
		}
	}
	return n, nil
}

// ---- Account repo ----

type memAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*model.Account
}

var _ repository.AccountRepository = (*memAccountRepo)(nil)

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*model.Account)}
}

func (r *memAccountRepo) Create(_ context.Context, _ repository.Tx, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == a.Email {
			return domain.ErrDuplicateEmail
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *memAccountRepo) Save(_ context.Context, _ repository.Tx, a *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *memAccountRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAccountRepo) FindByEmail(_ context.Context, _ repository.Tx, email string) (*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAccountRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memAccountRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.accounts, id)
	return nil
}

func (r *memAccountRepo) MarkExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, a := range r.accounts {
		if a.Status == model.AccountStatusActive && a.ExpiresAt != nil && !a.ExpiresAt.After(now) {
			a.Status = model.AccountStatusPending
			n++
		}
	}
	return n, nil
}

func (r *memAccountRepo) ListRetentionCandidates(_ context.Context, _ repository.Tx, now time.Time) ([]*model.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Account
	for _, a := range r.accounts {
		if a.Status == model.AccountStatusPending || (a.ExpiresAt != nil && !a.ExpiresAt.After(now)) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memAccountRepo) SetWarningFlag(_ context.Context, _ repository.Tx, id string, final bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if final {
		if a.FinalWarningSent {
			return false, nil
		}
		a.FinalWarningSent = true
	} else {
		if a.FirstWarningSent {
			return false, nil
		}
		a.FirstWarningSent = true
	}
	return true, nil
}

func (r *memAccountRepo) BindDevice(_ context.Context, _ repository.Tx, id, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return false, domain.ErrNotFound
	}
	if a.DeviceToken != nil && *a.DeviceToken != token {
		return false, nil
	}
	a.DeviceToken = &token
	return true, nil
}

func (r *memAccountRepo) ClearDevice(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.DeviceToken = nil
	return nil
}

func (r *memAccountRepo) SetResetOTP(_ context.Context, _ repository.Tx, id, otp string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.ResetOTP = &otp
	a.ResetOTPExpires = &expires
	return nil
}

func (r *memAccountRepo) UpdatePassword(_ context.Context, _ repository.Tx, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.ResetOTP = nil
	a.ResetOTPExpires = nil
	return nil
}

// ---- Transaction repo ----

type memTransactionRepo struct {
	mu  sync.Mutex
	txs map[string]*model.Transaction // by record ID
}

var _ repository.TransactionRepository = (*memTransactionRepo)(nil)

func newMemTransactionRepo() *memTransactionRepo {
	return &memTransactionRepo{txs: make(map[string]*model.Transaction)}
}

func (r *memTransactionRepo) Create(_ context.Context, _ repository.Tx, t *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.txs[t.ID] = &cp
	return nil
}

func (r *memTransactionRepo) UpsertBySession(_ context.Context, _ repository.Tx, t *model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.txs {
		if existing.GatewaySessionID != "" && existing.GatewaySessionID == t.GatewaySessionID {
			cp := *t
			cp.ID = existing.ID
			r.txs[id] = &cp
			return nil
		}
	}
	cp := *t
	r.txs[t.ID] = &cp
	return nil
}

func (r *memTransactionRepo) FindBySession(_ context.Context, _ repository.Tx, sessionID string) (*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txs {
		if t.GatewaySessionID == sessionID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memTransactionRepo) ListByAccount(_ context.Context, _ repository.Tx, accountID string) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Transaction
	for _, t := range r.txs {
		if t.AccountID != nil && *t.AccountID == accountID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTransactionRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Transaction, 0, len(r.txs))
	for _, t := range r.txs {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTransactionRepo) DeleteByAccount(_ context.Context, _ repository.Tx, accountID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, t := range r.txs {
		if t.AccountID != nil && *t.AccountID == accountID {
			delete(r.txs, id)
			n++
		}
	}
	return n, nil
}

// ---- Admin repo ----

type memAdminRepo struct {
	mu     sync.Mutex
	admins map[string]*model.Admin
}

var _ repository.AdminRepository = (*memAdminRepo)(nil)

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: make(map[string]*model.Admin)}
}

func (r *memAdminRepo) Save(_ context.Context, _ repository.Tx, a *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.admins[a.ID] = &cp
	return nil
}

func (r *memAdminRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAdminRepo) FindByEmail(_ context.Context, _ repository.Tx, email string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memAdminRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Admin, 0, len(r.admins))
	for _, a := range r.admins {
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memAdminRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.admins, id)
	return nil
}

func (r *memAdminRepo) SetResetOTP(_ context.Context, _ repository.Tx, id, otp string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.ResetOTP = &otp
	a.ResetOTPExpires = &expires
	return nil
}

func (r *memAdminRepo) UpdatePassword(_ context.Context, _ repository.Tx, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.ResetOTP = nil
	a.ResetOTPExpires = nil
	return nil
}

// ---- Class repo ----

type memClassRepo struct {
	mu          sync.Mutex
	classes     map[string]*model.Class
	roster      map[string]map[string]bool // classID -> studentID set
	videos      map[string][]*model.ClassVideo
	files       map[string][]*model.ClassFile
	submissions map[string]*model.Submission // by submission ID
}

var _ repository.ClassRepository = (*memClassRepo)(nil)

func newMemClassRepo() *memClassRepo {
	return &memClassRepo{
		classes:     make(map[string]*model.Class),
		roster:      make(map[string]map[string]bool),
		videos:      make(map[string][]*model.ClassVideo),
		files:       make(map[string][]*model.ClassFile),
		submissions: make(map[string]*model.Submission),
	}
}

func (r *memClassRepo) Save(_ context.Context, _ repository.Tx, c *model.Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.classes[c.ID] = &cp
	if r.roster[c.ID] == nil {
		r.roster[c.ID] = make(map[string]bool)
	}
	return nil
}

func (r *memClassRepo) FindByID(_ context.Context, _ repository.Tx, id string) (*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memClassRepo) ListAll(_ context.Context, _ repository.Tx) ([]*model.Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.Class, 0, len(r.classes))
	for _, c := range r.classes {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memClassRepo) Delete(_ context.Context, _ repository.Tx, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.classes, id)
	delete(r.roster, id)
	delete(r.videos, id)
	delete(r.files, id)
	for sid, s := range r.submissions {
		if s.ClassID == id {
			delete(r.submissions, sid)
		}
	}
	return nil
}

func (r *memClassRepo) AddStudent(_ context.Context, _ repository.Tx, classID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roster[classID] == nil {
		r.roster[classID] = make(map[string]bool)
	}
	r.roster[classID][studentID] = true
	return nil
}

func (r *memClassRepo) RemoveStudent(_ context.Context, _ repository.Tx, classID, studentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.roster[classID][studentID] {
		return domain.ErrNotFound
	}
	delete(r.roster[classID], studentID)
	return nil
}

func (r *memClassRepo) RemoveStudentEverywhere(_ context.Context, _ repository.Tx, studentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, students := range r.roster {
		if students[studentID] {
			delete(students, studentID)
			n++
		}
	}
	return n, nil
}

func (r *memClassRepo) ListVideos(_ context.Context, _ repository.Tx, classID string) ([]*model.ClassVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.ClassVideo(nil), r.videos[classID]...), nil
}

func (r *memClassRepo) ListFiles(_ context.Context, _ repository.Tx, classID string) ([]*model.ClassFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*model.ClassFile(nil), r.files[classID]...), nil
}

func (r *memClassRepo) ListSubmissionsByClass(_ context.Context, _ repository.Tx, classID string) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Submission
	for _, s := range r.submissions {
		if s.ClassID == classID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memClassRepo) ListSubmissionsByStudent(_ context.Context, _ repository.Tx, studentID string) ([]*model.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Submission
	for _, s := range r.submissions {
		if s.StudentID == studentID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memClassRepo) DeleteSubmissionsByStudent(_ context.Context, _ repository.Tx, studentID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, s := range r.submissions {
		if s.StudentID == studentID {
			delete(r.submissions, id)
			n++
		}
	}
	return n, nil
}

// ---- Payment gateway ----

type stubGateway struct {
	mu       sync.Mutex
	Sessions []adapter.CreateSessionRequest
	counter  int

	CreateSessionFunc func(ctx context.Context, req adapter.CreateSessionRequest) (*adapter.CheckoutSession, error)
}

var _ adapter.PaymentGateway = (*stubGateway)(nil)

func (g *stubGateway) Name() string { return "stub" }

func (g *stubGateway) CreateSession(ctx context.Context, req adapter.CreateSessionRequest) (*adapter.CheckoutSession, error) {
	if g.CreateSessionFunc != nil {
		return g.CreateSessionFunc(ctx, req)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	id := fmt.Sprintf("cs_%03d", g.counter)
	g.Sessions = append(g.Sessions, req)
	return &adapter.CheckoutSession{
		SessionID:   id,
		RedirectURL: "https://checkout.test/session/" + id,
	}, nil
}

func (g *stubGateway) VerifyAndDecodeEvent(_ []byte, _ string) (*adapter.ConfirmationEvent, error) {
	return nil, domain.ErrSignature
}

// LastSession returns the most recently minted session request.
func (g *stubGateway) LastSession() adapter.CreateSessionRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Sessions[len(g.Sessions)-1]
}

// ---- Notification sink ----

type sentMessage struct {
	Recipient string
	Kind      adapter.TemplateKind
	Data      map[string]string
}

type stubSink struct {
	mu   sync.Mutex
	Sent []sentMessage

	SendFunc func(ctx context.Context, recipient string, kind adapter.TemplateKind, data map[string]string) error
}

var _ adapter.NotificationSink = (*stubSink)(nil)

func (s *stubSink) Send(ctx context.Context, recipient string, kind adapter.TemplateKind, data map[string]string) error {
	if s.SendFunc != nil {
		return s.SendFunc(ctx, recipient, kind, data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, sentMessage{Recipient: recipient, Kind: kind, Data: data})
	return nil
}

func (s *stubSink) countKind(kind adapter.TemplateKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.Sent {
		if m.Kind == kind {
			n++
		}
	}
	return n
}

// ---- Object / video stores ----

type stubObjectStore struct {
	mu      sync.Mutex
	Deleted []string

	DeleteObjectFunc func(ctx context.Context, objectID string) error
}

var _ adapter.ObjectStore = (*stubObjectStore)(nil)

func (s *stubObjectStore) DeleteObject(ctx context.Context, objectID string) error {
	if s.DeleteObjectFunc != nil {
		return s.DeleteObjectFunc(ctx, objectID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, objectID)
	return nil
}

type stubVideoStore struct {
	mu      sync.Mutex
	Deleted []string
}

var _ adapter.VideoStore = (*stubVideoStore)(nil)

func (s *stubVideoStore) DeleteVideo(_ context.Context, videoID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, videoID)
	return nil
}
