package web

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	accountStore "gymdesk/internal/adapters/storage/account"
	attendanceStore "gymdesk/internal/adapters/storage/attendance"
	bookingStore "gymdesk/internal/adapters/storage/booking"
	gymclassStore "gymdesk/internal/adapters/storage/gymclass"
	memberStore "gymdesk/internal/adapters/storage/member"
	paymentStore "gymdesk/internal/adapters/storage/payment"
	planStore "gymdesk/internal/adapters/storage/plan"
	productStore "gymdesk/internal/adapters/storage/product"
	staffStore "gymdesk/internal/adapters/storage/staff"
	accountDomain "gymdesk/internal/domain/account"
	attendanceDomain "gymdesk/internal/domain/attendance"
	bookingDomain "gymdesk/internal/domain/booking"
	gymclassDomain "gymdesk/internal/domain/gymclass"
	memberDomain "gymdesk/internal/domain/member"
	outboxDomain "gymdesk/internal/domain/outbox"
	paymentDomain "gymdesk/internal/domain/payment"
	planDomain "gymdesk/internal/domain/plan"
	productDomain "gymdesk/internal/domain/product"
	staffDomain "gymdesk/internal/domain/staff"
)

// --- Mock stores backing the handler tests ---

type mockMemberStore struct {
	members map[string]memberDomain.Member
	saveErr error
}

// GetByID implements the member store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockMemberStore) GetByID(ctx context.Context, id string) (memberDomain.Member, error) {
	if mem, ok := m.members[id]; ok {
		return mem, nil
	}
	return memberDomain.Member{}, sql.ErrNoRows
}

// GetByDocument implements the member store interface for testing.
// PRE: document is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockMemberStore) GetByDocument(ctx context.Context, document string) (memberDomain.Member, error) {
	for _, mem := range m.members {
		if mem.Document == document {
			return mem, nil
		}
	}
	return memberDomain.Member{}, sql.ErrNoRows
}

// Save implements the member store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockMemberStore) Save(ctx context.Context, mem memberDomain.Member) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.members == nil {
		m.members = make(map[string]memberDomain.Member)
	}
	m.members[mem.ID] = mem
	return nil
}

// Delete implements the member store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockMemberStore) Delete(ctx context.Context, id string) error {
	delete(m.members, id)
	return nil
}

// SearchByName implements the member store interface for testing.
// PRE: query is non-empty
// POST: Returns non-archived members matching name, document or email
func (m *mockMemberStore) SearchByName(ctx context.Context, query string, limit int) ([]memberDomain.Member, error) {
	q := strings.ToLower(query)
	list := []memberDomain.Member{}
	for _, mem := range m.members {
		if mem.Archived {
			continue
		}
		if strings.Contains(strings.ToLower(mem.Name), q) ||
			strings.Contains(strings.ToLower(mem.Document), q) ||
			strings.Contains(strings.ToLower(mem.Email), q) {
			list = append(list, mem)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// List implements the member store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by name
func (m *mockMemberStore) List(ctx context.Context, filter memberStore.ListFilter) ([]memberDomain.Member, error) {
	if filter.Offset > 0 {
		return nil, nil
	}
	var list []memberDomain.Member
	for _, mem := range m.members {
		if mem.Archived && !filter.IncludeArchived {
			continue
		}
		if filter.Search != "" {
			q := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(mem.Name), q) &&
				!strings.Contains(strings.ToLower(mem.Document), q) &&
				!strings.Contains(strings.ToLower(mem.Email), q) {
				continue
			}
		}
		if filter.PlanID != "" && mem.PlanID != filter.PlanID {
			continue
		}
		list = append(list, mem)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

// Count implements the member store interface for testing.
// PRE: filter has valid parameters
// POST: Returns count of matching entities
func (m *mockMemberStore) Count(ctx context.Context, filter memberStore.ListFilter) (int, error) {
	count := 0
	for _, mem := range m.members {
		if mem.Archived && !filter.IncludeArchived {
			continue
		}
		count++
	}
	return count, nil
}

type mockPlanStore struct {
	plans map[string]planDomain.Plan
}

// GetByID implements the plan store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockPlanStore) GetByID(ctx context.Context, id string) (planDomain.Plan, error) {
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return planDomain.Plan{}, sql.ErrNoRows
}

// Save implements the plan store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockPlanStore) Save(ctx context.Context, p planDomain.Plan) error {
	if m.plans == nil {
		m.plans = make(map[string]planDomain.Plan)
	}
	m.plans[p.ID] = p
	return nil
}

// Delete implements the plan store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockPlanStore) Delete(ctx context.Context, id string) error {
	delete(m.plans, id)
	return nil
}

// List implements the plan store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching entities ordered by name
func (m *mockPlanStore) List(ctx context.Context, filter planStore.ListFilter) ([]planDomain.Plan, error) {
	var list []planDomain.Plan
	for _, p := range m.plans {
		if filter.OnlyActive && !p.Active {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// ListActive implements the plan store interface for testing.
// PRE: none
// POST: Returns active plans
func (m *mockPlanStore) ListActive(ctx context.Context) ([]planDomain.Plan, error) {
	return m.List(ctx, planStore.ListFilter{OnlyActive: true})
}

type mockPaymentStore struct {
	payments map[string]paymentDomain.Payment
}

// GetByID implements the payment store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockPaymentStore) GetByID(ctx context.Context, id string) (paymentDomain.Payment, error) {
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return paymentDomain.Payment{}, sql.ErrNoRows
}

// Save implements the payment store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockPaymentStore) Save(ctx context.Context, p paymentDomain.Payment) error {
	if m.payments == nil {
		m.payments = make(map[string]paymentDomain.Payment)
	}
	m.payments[p.ID] = p
	return nil
}

// Delete implements the payment store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockPaymentStore) Delete(ctx context.Context, id string) error {
	delete(m.payments, id)
	return nil
}

// List implements the payment store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching entities newest first
func (m *mockPaymentStore) List(ctx context.Context, filter paymentStore.ListFilter) ([]paymentDomain.Payment, error) {
	var list []paymentDomain.Payment
	for _, p := range m.payments {
		if filter.MemberID != "" && p.MemberID != filter.MemberID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.Method != "" && p.Method != filter.Method {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PaymentDate.After(list[j].PaymentDate) })
	return list, nil
}

// ListByMemberID implements the payment store interface for testing.
// PRE: memberID is non-empty
// POST: Returns payments for the member, newest first
func (m *mockPaymentStore) ListByMemberID(ctx context.Context, memberID string) ([]paymentDomain.Payment, error) {
	return m.List(ctx, paymentStore.ListFilter{MemberID: memberID})
}

// SumCompletedByDateRange implements the payment store interface for testing.
// PRE: dates are YYYY-MM-DD
// POST: Returns the sum of completed payments within the range
func (m *mockPaymentStore) SumCompletedByDateRange(ctx context.Context, startDate, endDate string) (float64, error) {
	var sum float64
	for _, p := range m.payments {
		if !p.IsCompleted() {
			continue
		}
		day := p.PaymentDate.Format("2006-01-02")
		if day >= startDate && day <= endDate {
			sum += p.Amount
		}
	}
	return sum, nil
}

type mockAttendanceStore struct {
	attendances map[string]attendanceDomain.Attendance
}

// GetByID implements the attendance store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockAttendanceStore) GetByID(ctx context.Context, id string) (attendanceDomain.Attendance, error) {
	if a, ok := m.attendances[id]; ok {
		return a, nil
	}
	return attendanceDomain.Attendance{}, sql.ErrNoRows
}

// Save implements the attendance store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockAttendanceStore) Save(ctx context.Context, a attendanceDomain.Attendance) error {
	if m.attendances == nil {
		m.attendances = make(map[string]attendanceDomain.Attendance)
	}
	m.attendances[a.ID] = a
	return nil
}

// Delete implements the attendance store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockAttendanceStore) Delete(ctx context.Context, id string) error {
	delete(m.attendances, id)
	return nil
}

// List implements the attendance store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (m *mockAttendanceStore) List(ctx context.Context, filter attendanceStore.ListFilter) ([]attendanceDomain.Attendance, error) {
	var list []attendanceDomain.Attendance
	for _, a := range m.attendances {
		if filter.MemberID != "" && a.MemberID != filter.MemberID {
			continue
		}
		if filter.ClassID != "" && a.ClassID != filter.ClassID {
			continue
		}
		list = append(list, a)
	}
	return list, nil
}

// ListByMemberID implements the attendance store interface for testing.
// PRE: memberID is non-empty
// POST: Returns visits newest first
func (m *mockAttendanceStore) ListByMemberID(ctx context.Context, memberID string) ([]attendanceDomain.Attendance, error) {
	list, _ := m.List(ctx, attendanceStore.ListFilter{MemberID: memberID})
	sort.Slice(list, func(i, j int) bool { return list[i].EntryTime.After(list[j].EntryTime) })
	return list, nil
}

// ListByDate implements the attendance store interface for testing.
// PRE: date is YYYY-MM-DD
// POST: Returns visits whose entry falls on the date
func (m *mockAttendanceStore) ListByDate(ctx context.Context, date string) ([]attendanceDomain.Attendance, error) {
	var list []attendanceDomain.Attendance
	for _, a := range m.attendances {
		if a.EntryTime.Format("2006-01-02") == date {
			list = append(list, a)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EntryTime.Before(list[j].EntryTime) })
	return list, nil
}

// GetOpenByMemberID implements the attendance store interface for testing.
// PRE: memberID is non-empty
// POST: Returns the most recent open visit or sql.ErrNoRows
func (m *mockAttendanceStore) GetOpenByMemberID(ctx context.Context, memberID string) (attendanceDomain.Attendance, error) {
	var open attendanceDomain.Attendance
	found := false
	for _, a := range m.attendances {
		if a.MemberID != memberID || !a.ExitTime.IsZero() {
			continue
		}
		if !found || a.EntryTime.After(open.EntryTime) {
			open = a
			found = true
		}
	}
	if !found {
		return attendanceDomain.Attendance{}, sql.ErrNoRows
	}
	return open, nil
}

// CountByDate implements the attendance store interface for testing.
// PRE: date is YYYY-MM-DD
// POST: Returns the number of visits on the date
func (m *mockAttendanceStore) CountByDate(ctx context.Context, date string) (int, error) {
	list, _ := m.ListByDate(ctx, date)
	return len(list), nil
}

type mockClassStore struct {
	classes map[string]gymclassDomain.Class
}

// GetByID implements the class store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockClassStore) GetByID(ctx context.Context, id string) (gymclassDomain.Class, error) {
	if c, ok := m.classes[id]; ok {
		return c, nil
	}
	return gymclassDomain.Class{}, sql.ErrNoRows
}

// Save implements the class store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockClassStore) Save(ctx context.Context, c gymclassDomain.Class) error {
	if m.classes == nil {
		m.classes = make(map[string]gymclassDomain.Class)
	}
	m.classes[c.ID] = c
	return nil
}

// Delete implements the class store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockClassStore) Delete(ctx context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

// List implements the class store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching classes ordered by start time
func (m *mockClassStore) List(ctx context.Context, filter gymclassStore.ListFilter) ([]gymclassDomain.Class, error) {
	var list []gymclassDomain.Class
	for _, c := range m.classes {
		if filter.Weekday != "" && c.Weekday != filter.Weekday {
			continue
		}
		if filter.OnlyActive && !c.Active {
			continue
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].StartTime < list[j].StartTime })
	return list, nil
}

type mockBookingStore struct {
	bookings map[string]bookingDomain.Booking
}

// GetByID implements the booking store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockBookingStore) GetByID(ctx context.Context, id string) (bookingDomain.Booking, error) {
	if b, ok := m.bookings[id]; ok {
		return b, nil
	}
	return bookingDomain.Booking{}, sql.ErrNoRows
}

// Save implements the booking store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockBookingStore) Save(ctx context.Context, b bookingDomain.Booking) error {
	if m.bookings == nil {
		m.bookings = make(map[string]bookingDomain.Booking)
	}
	m.bookings[b.ID] = b
	return nil
}

// Delete implements the booking store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockBookingStore) Delete(ctx context.Context, id string) error {
	delete(m.bookings, id)
	return nil
}

// List implements the booking store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching bookings
func (m *mockBookingStore) List(ctx context.Context, filter bookingStore.ListFilter) ([]bookingDomain.Booking, error) {
	var list []bookingDomain.Booking
	for _, b := range m.bookings {
		if filter.MemberID != "" && b.MemberID != filter.MemberID {
			continue
		}
		if filter.ClassID != "" && b.ClassID != filter.ClassID {
			continue
		}
		if filter.Date != "" && b.Date.Format("2006-01-02") != filter.Date {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		list = append(list, b)
	}
	return list, nil
}

// CountActiveByClassAndDate implements the booking store interface for testing.
// PRE: classID and date are non-empty
// POST: Returns the number of seats counted toward capacity
func (m *mockBookingStore) CountActiveByClassAndDate(ctx context.Context, classID, date string) (int, error) {
	count := 0
	for _, b := range m.bookings {
		if b.ClassID == classID && b.Date.Format("2006-01-02") == date && b.CountsTowardCapacity() {
			count++
		}
	}
	return count, nil
}

// GetActiveByMemberClassAndDate implements the booking store interface for testing.
// PRE: all arguments are non-empty
// POST: Returns the member's live booking for the session or sql.ErrNoRows
func (m *mockBookingStore) GetActiveByMemberClassAndDate(ctx context.Context, memberID, classID, date string) (bookingDomain.Booking, error) {
	for _, b := range m.bookings {
		if b.MemberID == memberID && b.ClassID == classID &&
			b.Date.Format("2006-01-02") == date && b.CountsTowardCapacity() {
			return b, nil
		}
	}
	return bookingDomain.Booking{}, sql.ErrNoRows
}

type mockProductStore struct {
	products map[string]productDomain.Product
}

// GetByID implements the product store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockProductStore) GetByID(ctx context.Context, id string) (productDomain.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return productDomain.Product{}, sql.ErrNoRows
}

// Save implements the product store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockProductStore) Save(ctx context.Context, p productDomain.Product) error {
	if m.products == nil {
		m.products = make(map[string]productDomain.Product)
	}
	m.products[p.ID] = p
	return nil
}

// Delete implements the product store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockProductStore) Delete(ctx context.Context, id string) error {
	delete(m.products, id)
	return nil
}

// List implements the product store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching products
func (m *mockProductStore) List(ctx context.Context, filter productStore.ListFilter) ([]productDomain.Product, error) {
	var list []productDomain.Product
	for _, p := range m.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.LowStockOnly && !p.IsLowStock() {
			continue
		}
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// AdjustStock implements the product store interface for testing.
// PRE: id is non-empty
// POST: Stock adjusted; fails if the result would go negative
func (m *mockProductStore) AdjustStock(ctx context.Context, id string, delta int) error {
	p, ok := m.products[id]
	if !ok || p.Stock+delta < 0 {
		return fmt.Errorf("stock adjustment rejected for product %s", id)
	}
	p.Stock += delta
	m.products[id] = p
	return nil
}

type mockStaffStore struct {
	staff map[string]staffDomain.StaffMember
}

// GetByID implements the staff store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockStaffStore) GetByID(ctx context.Context, id string) (staffDomain.StaffMember, error) {
	if s, ok := m.staff[id]; ok {
		return s, nil
	}
	return staffDomain.StaffMember{}, sql.ErrNoRows
}

// Save implements the staff store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockStaffStore) Save(ctx context.Context, s staffDomain.StaffMember) error {
	if m.staff == nil {
		m.staff = make(map[string]staffDomain.StaffMember)
	}
	m.staff[s.ID] = s
	return nil
}

// Delete implements the staff store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockStaffStore) Delete(ctx context.Context, id string) error {
	delete(m.staff, id)
	return nil
}

// List implements the staff store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching staff ordered by name
func (m *mockStaffStore) List(ctx context.Context, filter staffStore.ListFilter) ([]staffDomain.StaffMember, error) {
	var list []staffDomain.StaffMember
	for _, s := range m.staff {
		if filter.Role != "" && s.Role != filter.Role {
			continue
		}
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

type mockAccountStore struct {
	accounts map[string]accountDomain.Account
}

// GetByID implements the account store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockAccountStore) GetByID(ctx context.Context, id string) (accountDomain.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return accountDomain.Account{}, sql.ErrNoRows
}

// GetByEmail implements the account store interface for testing.
// PRE: email is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (accountDomain.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return accountDomain.Account{}, sql.ErrNoRows
}

// Save implements the account store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockAccountStore) Save(ctx context.Context, a accountDomain.Account) error {
	if m.accounts == nil {
		m.accounts = make(map[string]accountDomain.Account)
	}
	m.accounts[a.ID] = a
	return nil
}

// Delete implements the account store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockAccountStore) Delete(ctx context.Context, id string) error {
	delete(m.accounts, id)
	return nil
}

// List implements the account store interface for testing.
// PRE: filter has valid parameters
// POST: Returns matching accounts
func (m *mockAccountStore) List(ctx context.Context, filter accountStore.ListFilter) ([]accountDomain.Account, error) {
	var list []accountDomain.Account
	for _, a := range m.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Email < list[j].Email })
	return list, nil
}

// Count implements the account store interface for testing.
// PRE: none
// POST: Returns total accounts
func (m *mockAccountStore) Count(ctx context.Context) (int, error) {
	return len(m.accounts), nil
}

type mockOutboxStore struct {
	entries map[string]outboxDomain.Entry
}

// GetByID implements the outbox store interface for testing.
// PRE: id is non-empty
// POST: Returns the entity or sql.ErrNoRows
func (m *mockOutboxStore) GetByID(ctx context.Context, id string) (outboxDomain.Entry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return outboxDomain.Entry{}, sql.ErrNoRows
}

// Save implements the outbox store interface for testing.
// PRE: entity has been validated
// POST: Entity is persisted
func (m *mockOutboxStore) Save(ctx context.Context, e outboxDomain.Entry) error {
	if m.entries == nil {
		m.entries = make(map[string]outboxDomain.Entry)
	}
	m.entries[e.ID] = e
	return nil
}

// ListPending implements the outbox store interface for testing.
// PRE: limit > 0
// POST: Returns pending and retrying entries oldest first
func (m *mockOutboxStore) ListPending(ctx context.Context, limit int) ([]outboxDomain.Entry, error) {
	var list []outboxDomain.Entry
	for _, e := range m.entries {
		if e.Status == outboxDomain.StatusPending || e.Status == outboxDomain.StatusRetrying {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ListFailed implements the outbox store interface for testing.
// PRE: limit > 0
// POST: Returns failed entries
func (m *mockOutboxStore) ListFailed(ctx context.Context, limit int) ([]outboxDomain.Entry, error) {
	var list []outboxDomain.Entry
	for _, e := range m.entries {
		if e.Status == outboxDomain.StatusFailed {
			list = append(list, e)
		}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// ListByActionType implements the outbox store interface for testing.
// PRE: actionType is non-empty
// POST: Returns matching entries
func (m *mockOutboxStore) ListByActionType(ctx context.Context, actionType string, status string, limit int) ([]outboxDomain.Entry, error) {
	var list []outboxDomain.Entry
	for _, e := range m.entries {
		if e.ActionType != actionType {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		list = append(list, e)
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete implements the outbox store interface for testing.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (m *mockOutboxStore) Delete(ctx context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

// testDate builds a date at midnight local time.
func testDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
}
