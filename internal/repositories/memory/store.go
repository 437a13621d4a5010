// Package memory provides map-backed repositories with the same semantics as
// the gorm ones, for tests and local experiments without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"quickloan/internal/models"
	"quickloan/internal/repositories"
)

type data struct {
	users         map[uint]models.User
	loanTypes     map[uint]models.LoanType
	profiles      map[uint]models.BorrowerProfile
	applications  map[uint]models.LoanApplication
	documents     map[uint]models.LoanDocument
	payments      map[uint]models.LoanPayment
	withdrawals   map[uint]models.LoanWithdrawal
	notifications map[uint]models.Notification
	seq           uint
}

func newData() data {
	return data{
		users:         map[uint]models.User{},
		loanTypes:     map[uint]models.LoanType{},
		profiles:      map[uint]models.BorrowerProfile{},
		applications:  map[uint]models.LoanApplication{},
		documents:     map[uint]models.LoanDocument{},
		payments:      map[uint]models.LoanPayment{},
		withdrawals:   map[uint]models.LoanWithdrawal{},
		notifications: map[uint]models.Notification{},
	}
}

func (d data) clone() data {
	cp := newData()
	cp.seq = d.seq
	for k, v := range d.users {
		cp.users[k] = v
	}
	for k, v := range d.loanTypes {
		cp.loanTypes[k] = v
	}
	for k, v := range d.profiles {
		cp.profiles[k] = v
	}
	for k, v := range d.applications {
		cp.applications[k] = v
	}
	for k, v := range d.documents {
		cp.documents[k] = v
	}
	for k, v := range d.payments {
		cp.payments[k] = v
	}
	for k, v := range d.withdrawals {
		cp.withdrawals[k] = v
	}
	for k, v := range d.notifications {
		cp.notifications[k] = v
	}
	return cp
}

// Store holds every table. Transactions are serialized and roll back by
// restoring a snapshot.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	d    data
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{d: newData(), now: time.Now}
}

// SetClock overrides the timestamp source used for created/updated fields.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) nextID() uint {
	s.d.seq++
	return s.d.seq
}

// Repositories returns the repository bundle backed by this store.
func (s *Store) Repositories() *repositories.Repositories {
	base := repositories.Repositories{
		Users:         &userRepo{s},
		LoanTypes:     &loanTypeRepo{s},
		Profiles:      &profileRepo{s},
		Applications:  &applicationRepo{s},
		Documents:     &documentRepo{s},
		Payments:      &paymentRepo{s},
		Withdrawals:   &withdrawalRepo{s},
		Notifications: &notificationRepo{s},
	}
	inTx := repositories.NewRepositoriesWithTransactor(base, func(_ context.Context, fn func(*repositories.Repositories) error) error {
		return fn(&base)
	})
	return repositories.NewRepositoriesWithTransactor(base, func(_ context.Context, fn func(*repositories.Repositories) error) error {
		s.txMu.Lock()
		defer s.txMu.Unlock()

		s.mu.Lock()
		snapshot := s.d.clone()
		s.mu.Unlock()

		if err := fn(inTx); err != nil {
			s.mu.Lock()
			s.d = snapshot
			s.mu.Unlock()
			return err
		}
		return nil
	})
}

// Users

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = r.s.nextID()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	if user.TokenVersion == 0 {
		user.TokenVersion = 1
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *userRepo) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	for id, u := range r.s.d.users {
		if id != user.ID && u.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.UpdatedAt = r.s.now()
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *userRepo) IncrementTokenVersion(_ context.Context, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.d.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.TokenVersion++
	r.s.d.users[userID] = u
	return nil
}

func (r *userRepo) ActiveIDs(_ context.Context, afterID uint, limit int) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for id, u := range r.s.d.users {
		if u.IsActive && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Loan types

type loanTypeRepo struct{ s *Store }

func (r *loanTypeRepo) Create(_ context.Context, lt *models.LoanType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.d.loanTypes {
		if existing.Name == lt.Name {
			return repositories.ErrDuplicate
		}
	}
	lt.ID = r.s.nextID()
	lt.CreatedAt = r.s.now()
	lt.UpdatedAt = lt.CreatedAt
	r.s.d.loanTypes[lt.ID] = *lt
	return nil
}

func (r *loanTypeRepo) GetByID(_ context.Context, id uint) (*models.LoanType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lt, ok := r.s.d.loanTypes[id]
	if !ok {
		return nil, repositories.ErrLoanTypeNotFound
	}
	return &lt, nil
}

func (r *loanTypeRepo) GetByName(_ context.Context, name string) (*models.LoanType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, lt := range r.s.d.loanTypes {
		if lt.Name == name {
			return &lt, nil
		}
	}
	return nil, repositories.ErrLoanTypeNotFound
}

func (r *loanTypeRepo) List(_ context.Context, activeOnly bool, category string) ([]models.LoanType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.LoanType{}
	for _, lt := range r.s.d.loanTypes {
		if activeOnly && !lt.IsActive {
			continue
		}
		if category != "" && lt.Category != category {
			continue
		}
		out = append(out, lt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *loanTypeRepo) Update(_ context.Context, lt *models.LoanType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.loanTypes[lt.ID]; !ok {
		return repositories.ErrLoanTypeNotFound
	}
	lt.UpdatedAt = r.s.now()
	r.s.d.loanTypes[lt.ID] = *lt
	return nil
}

// Profiles

type profileRepo struct{ s *Store }

func (r *profileRepo) GetByUserID(_ context.Context, userID uint) (*models.BorrowerProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.d.profiles {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *profileRepo) GetByIDNumber(_ context.Context, idNumber string) (*models.BorrowerProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.d.profiles {
		if p.IDNumber == idNumber {
			return &p, nil
		}
	}
	return nil, repositories.ErrProfileNotFound
}

func (r *profileRepo) Create(_ context.Context, p *models.BorrowerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.d.profiles {
		if existing.UserID == p.UserID || existing.IDNumber == p.IDNumber {
			return repositories.ErrDuplicate
		}
	}
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	if p.ProfilePicture == "" {
		p.ProfilePicture = models.DefaultProfilePicture
	}
	r.s.d.profiles[p.ID] = *p
	return nil
}

func (r *profileRepo) Update(_ context.Context, p *models.BorrowerProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.profiles[p.ID]; !ok {
		return repositories.ErrProfileNotFound
	}
	for id, existing := range r.s.d.profiles {
		if id != p.ID && existing.IDNumber == p.IDNumber {
			return repositories.ErrDuplicate
		}
	}
	p.UpdatedAt = r.s.now()
	r.s.d.profiles[p.ID] = *p
	return nil
}

// Applications

type applicationRepo struct{ s *Store }

func (r *applicationRepo) withType(app models.LoanApplication) *models.LoanApplication {
	if lt, ok := r.s.d.loanTypes[app.LoanTypeID]; ok {
		app.LoanType = &lt
	}
	app.Documents = nil
	app.Payments = nil
	app.Withdrawal = nil
	return &app
}

func (r *applicationRepo) Create(_ context.Context, app *models.LoanApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app.ID = r.s.nextID()
	if app.ApplicationDate.IsZero() {
		app.ApplicationDate = r.s.now()
	}
	app.UpdatedAt = r.s.now()
	stored := *app
	stored.LoanType = nil
	r.s.d.applications[app.ID] = stored
	return nil
}

func (r *applicationRepo) GetByID(_ context.Context, id uint) (*models.LoanApplication, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.d.applications[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	return r.withType(app), nil
}

// GetForUpdate relies on the transaction mutex for exclusion.
func (r *applicationRepo) GetForUpdate(ctx context.Context, id uint) (*models.LoanApplication, error) {
	return r.GetByID(ctx, id)
}

func (r *applicationRepo) Update(_ context.Context, app *models.LoanApplication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.applications[app.ID]; !ok {
		return repositories.ErrApplicationNotFound
	}
	app.UpdatedAt = r.s.now()
	stored := *app
	stored.LoanType = nil
	stored.Documents = nil
	stored.Payments = nil
	stored.Withdrawal = nil
	r.s.d.applications[app.ID] = stored
	return nil
}

func (r *applicationRepo) filter(keep func(models.LoanApplication) bool, offset, limit int) ([]models.LoanApplication, int64) {
	var all []models.LoanApplication
	for _, app := range r.s.d.applications {
		if keep(app) {
			all = append(all, *r.withType(app))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].ApplicationDate.Equal(all[j].ApplicationDate) {
			return all[i].ID > all[j].ID
		}
		return all[i].ApplicationDate.After(all[j].ApplicationDate)
	})
	total := int64(len(all))
	return page(all, offset, limit), total
}

func (r *applicationRepo) ListByApplicant(_ context.Context, applicantID uint, offset, limit int) ([]models.LoanApplication, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	apps, total := r.filter(func(a models.LoanApplication) bool { return a.ApplicantID == applicantID }, offset, limit)
	return apps, total, nil
}

func (r *applicationRepo) ListByStatus(_ context.Context, status string, offset, limit int) ([]models.LoanApplication, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	apps, total := r.filter(func(a models.LoanApplication) bool { return status == "" || a.Status == status }, offset, limit)
	return apps, total, nil
}

func (r *applicationRepo) CountByApplicant(_ context.Context, applicantID uint, statuses ...string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.d.applications {
		if a.ApplicantID == applicantID && (len(statuses) == 0 || contains(statuses, a.Status)) {
			n++
		}
	}
	return n, nil
}

// Documents

type documentRepo struct{ s *Store }

func (r *documentRepo) Create(_ context.Context, doc *models.LoanDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc.ID = r.s.nextID()
	doc.UploadedAt = r.s.now()
	r.s.d.documents[doc.ID] = *doc
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, id uint) (*models.LoanDocument, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	doc, ok := r.s.d.documents[id]
	if !ok {
		return nil, repositories.ErrDocumentNotFound
	}
	return &doc, nil
}

func (r *documentRepo) Update(_ context.Context, doc *models.LoanDocument) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.documents[doc.ID]; !ok {
		return repositories.ErrDocumentNotFound
	}
	r.s.d.documents[doc.ID] = *doc
	return nil
}

func (r *documentRepo) ListByApplication(_ context.Context, applicationID uint) ([]models.LoanDocument, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.LoanDocument{}
	for _, doc := range r.s.d.documents {
		if doc.LoanApplicationID == applicationID {
			out = append(out, doc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Payments

type paymentRepo struct{ s *Store }

func (r *paymentRepo) insert(p *models.LoanPayment) {
	p.ID = r.s.nextID()
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.d.payments[p.ID] = *p
}

func (r *paymentRepo) Create(_ context.Context, p *models.LoanPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.insert(p)
	return nil
}

func (r *paymentRepo) CreateBatch(_ context.Context, payments []models.LoanPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range payments {
		r.insert(&payments[i])
	}
	return nil
}

func (r *paymentRepo) Update(_ context.Context, p *models.LoanPayment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.payments[p.ID]; !ok {
		return repositories.ErrPaymentNotFound
	}
	p.UpdatedAt = r.s.now()
	r.s.d.payments[p.ID] = *p
	return nil
}

func (r *paymentRepo) ListByApplication(_ context.Context, applicationID uint) ([]models.LoanPayment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.LoanPayment{}
	for _, p := range r.s.d.payments {
		if p.LoanApplicationID == applicationID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DueDate.Equal(out[j].DueDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out, nil
}

func (r *paymentRepo) CountByApplication(_ context.Context, applicationID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.d.payments {
		if p.LoanApplicationID == applicationID {
			n++
		}
	}
	return n, nil
}

func (r *paymentRepo) MarkOverdue(_ context.Context, applicationID uint, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, p := range r.s.d.payments {
		if p.LoanApplicationID == applicationID && p.Status == models.PaymentPending && p.DueDate.Before(cutoff) {
			p.Status = models.PaymentOverdue
			r.s.d.payments[id] = p
			n++
		}
	}
	return n, nil
}

func (r *paymentRepo) applicantOwns(p models.LoanPayment, applicantID uint) bool {
	app, ok := r.s.d.applications[p.LoanApplicationID]
	return ok && app.ApplicantID == applicantID
}

func (r *paymentRepo) SumCompletedByApplicant(_ context.Context, applicantID uint) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.s.d.payments {
		if p.IsPaid() && r.applicantOwns(p, applicantID) {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *paymentRepo) CountOverdueByApplicant(_ context.Context, applicantID uint, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.d.payments {
		if p.IsInstallment && p.IsOpen() && p.DueDate.Before(cutoff) && r.applicantOwns(p, applicantID) {
			n++
		}
	}
	return n, nil
}

// Withdrawals

type withdrawalRepo struct{ s *Store }

func (r *withdrawalRepo) Create(_ context.Context, w *models.LoanWithdrawal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.d.withdrawals {
		if existing.LoanApplicationID == w.LoanApplicationID {
			return repositories.ErrDuplicate
		}
	}
	w.ID = r.s.nextID()
	w.WithdrawalDate = r.s.now()
	r.s.d.withdrawals[w.ID] = *w
	return nil
}

func (r *withdrawalRepo) Update(_ context.Context, w *models.LoanWithdrawal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.d.withdrawals[w.ID]; !ok {
		return repositories.ErrWithdrawalNotFound
	}
	r.s.d.withdrawals[w.ID] = *w
	return nil
}

func (r *withdrawalRepo) GetByApplication(_ context.Context, applicationID uint) (*models.LoanWithdrawal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.d.withdrawals {
		if w.LoanApplicationID == applicationID {
			return &w, nil
		}
	}
	return nil, repositories.ErrWithdrawalNotFound
}

// Notifications

type notificationRepo struct{ s *Store }

func (r *notificationRepo) insert(n *models.Notification) {
	n.ID = r.s.nextID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	r.s.d.notifications[n.ID] = *n
}

func (r *notificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.insert(n)
	return nil
}

func (r *notificationRepo) CreateBatch(_ context.Context, notifications []models.Notification, _ int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range notifications {
		r.insert(&notifications[i])
	}
	return nil
}

func (r *notificationRepo) sorted(keep func(models.Notification) bool) []models.Notification {
	out := []models.Notification{}
	for _, n := range r.s.d.notifications {
		if keep(n) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *notificationRepo) ListByUser(_ context.Context, userID uint, offset, limit int) ([]models.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(n models.Notification) bool { return n.UserID == userID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *notificationRepo) Unread(_ context.Context, userID uint, limit int) ([]models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.sorted(func(n models.Notification) bool { return n.UserID == userID && !n.IsRead })
	return page(all, 0, limit), nil
}

func (r *notificationRepo) CountUnread(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, item := range r.s.d.notifications {
		if item.UserID == userID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepo) MarkRead(_ context.Context, userID, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.d.notifications[id]
	if !ok || n.UserID != userID {
		return repositories.ErrNotificationNotFound
	}
	n.IsRead = true
	r.s.d.notifications[id] = n
	return nil
}

func (r *notificationRepo) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for id, n := range r.s.d.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			r.s.d.notifications[id] = n
			count++
		}
	}
	return count, nil
}

func (r *notificationRepo) ExistsSince(_ context.Context, userID uint, title string, since time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.d.notifications {
		if n.UserID == userID && n.Title == title && !n.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
