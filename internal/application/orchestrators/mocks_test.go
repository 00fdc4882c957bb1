package orchestrators

import (
	"context"
	"errors"
	"sort"

	emailAdapter "gymdesk/internal/adapters/email"
	memberStore "gymdesk/internal/adapters/storage/member"
	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/booking"
	"gymdesk/internal/domain/member"
	"gymdesk/internal/domain/outbox"
	"gymdesk/internal/domain/payment"
	"gymdesk/internal/domain/plan"
)

// --- Mock member store ---

type mockMemberStore struct {
	members map[string]member.Member
	saveErr error
}

func newMockMemberStore() *mockMemberStore {
	return &mockMemberStore{members: make(map[string]member.Member)}
}

func (m *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	v, ok := m.members[id]
	if !ok {
		return member.Member{}, errors.New("not found")
	}
	return v, nil
}

func (m *mockMemberStore) GetByDocument(_ context.Context, document string) (member.Member, error) {
	for _, v := range m.members {
		if v.Document == document {
			return v, nil
		}
	}
	return member.Member{}, errors.New("not found")
}

func (m *mockMemberStore) Save(_ context.Context, v member.Member) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.members[v.ID] = v
	return nil
}

func (m *mockMemberStore) List(_ context.Context, filter memberStore.ListFilter) ([]member.Member, error) {
	if filter.Offset > 0 {
		return nil, nil
	}
	var result []member.Member
	for _, v := range m.members {
		if v.Archived && !filter.IncludeArchived {
			continue
		}
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockMemberStore) SearchByName(_ context.Context, query string, limit int) ([]member.Member, error) {
	var result []member.Member
	for _, v := range m.members {
		if v.Archived {
			continue
		}
		result = append(result, v)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

// --- Mock plan store ---

type mockPlanStore struct {
	plans map[string]plan.Plan
}

func newMockPlanStore() *mockPlanStore {
	return &mockPlanStore{plans: make(map[string]plan.Plan)}
}

func (m *mockPlanStore) GetByID(_ context.Context, id string) (plan.Plan, error) {
	v, ok := m.plans[id]
	if !ok {
		return plan.Plan{}, errors.New("not found")
	}
	return v, nil
}

// --- Mock payment store ---

type mockPaymentStore struct {
	payments []payment.Payment
	saveErr  error
}

func (m *mockPaymentStore) Save(_ context.Context, p payment.Payment) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.payments = append(m.payments, p)
	return nil
}

// --- Mock outbox store ---

type mockOutboxStore struct {
	entries []outbox.Entry
	saveErr error
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for i := range m.entries {
		if m.entries[i].ID == e.ID {
			m.entries[i] = e
			return nil
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return outbox.Entry{}, errors.New("not found")
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var result []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (m *mockOutboxStore) ListFailed(_ context.Context, limit int) ([]outbox.Entry, error) {
	var result []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusFailed {
			result = append(result, e)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

func (m *mockOutboxStore) ListByActionType(_ context.Context, actionType string, status string, limit int) ([]outbox.Entry, error) {
	var result []outbox.Entry
	for _, e := range m.entries {
		if e.ActionType != actionType {
			continue
		}
		if status != "" && e.Status != status {
			continue
		}
		result = append(result, e)
		if len(result) >= limit {
			break
		}
	}
	return result, nil
}

func (m *mockOutboxStore) Delete(_ context.Context, id string) error {
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- Mock attendance store ---

type mockAttendanceStore struct {
	records []attendance.Attendance
	saveErr error
}

func (m *mockAttendanceStore) Save(_ context.Context, a attendance.Attendance) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	for i := range m.records {
		if m.records[i].ID == a.ID {
			m.records[i] = a
			return nil
		}
	}
	m.records = append(m.records, a)
	return nil
}

func (m *mockAttendanceStore) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return m.records[i], nil
		}
	}
	return attendance.Attendance{}, errors.New("not found")
}

func (m *mockAttendanceStore) Delete(_ context.Context, id string) error {
	for i := range m.records {
		if m.records[i].ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (m *mockAttendanceStore) GetOpenByMemberID(_ context.Context, memberID string) (attendance.Attendance, error) {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].MemberID == memberID && m.records[i].ExitTime.IsZero() {
			return m.records[i], nil
		}
	}
	return attendance.Attendance{}, errors.New("not found")
}

// --- Mock email sender ---

type mockEmailSender struct {
	sent    []emailAdapter.SendRequest
	sendErr error
}

func (m *mockEmailSender) Send(_ context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error) {
	if m.sendErr != nil {
		return emailAdapter.SendResult{}, m.sendErr
	}
	m.sent = append(m.sent, req)
	return emailAdapter.SendResult{MessageID: "mock-1"}, nil
}

func (m *mockEmailSender) SendBatch(_ context.Context, reqs []emailAdapter.SendRequest) ([]emailAdapter.SendResult, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	var results []emailAdapter.SendResult
	for range reqs {
		results = append(results, emailAdapter.SendResult{MessageID: "mock-batch"})
	}
	m.sent = append(m.sent, reqs...)
	return results, nil
}

// --- Mock booking store ---

type mockBookingStore struct {
	bookings map[string]booking.Booking
	saveErr  error
}

func newMockBookingStore() *mockBookingStore {
	return &mockBookingStore{bookings: make(map[string]booking.Booking)}
}

func (m *mockBookingStore) GetByID(_ context.Context, id string) (booking.Booking, error) {
	v, ok := m.bookings[id]
	if !ok {
		return booking.Booking{}, errors.New("not found")
	}
	return v, nil
}

func (m *mockBookingStore) Save(_ context.Context, b booking.Booking) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.bookings[b.ID] = b
	return nil
}

func (m *mockBookingStore) CountActiveByClassAndDate(_ context.Context, classID, date string) (int, error) {
	count := 0
	for _, b := range m.bookings {
		if b.ClassID == classID && b.Date.Format("2006-01-02") == date && b.CountsTowardCapacity() {
			count++
		}
	}
	return count, nil
}

func (m *mockBookingStore) GetActiveByMemberClassAndDate(_ context.Context, memberID, classID, date string) (booking.Booking, error) {
	for _, b := range m.bookings {
		if b.MemberID == memberID && b.ClassID == classID && b.Date.Format("2006-01-02") == date && b.Status != booking.StatusCancelled {
			return b, nil
		}
	}
	return booking.Booking{}, errors.New("not found")
}

// --- Mock account store ---

type mockAccountStore struct {
	accounts map[string]account.Account
	saveErr  error
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (account.Account, error) {
	if a, ok := m.accounts[id]; ok {
		return a, nil
	}
	return account.Account{}, errors.New("not found")
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return account.Account{}, errors.New("not found")
}

func (m *mockAccountStore) Save(_ context.Context, a account.Account) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.accounts[a.ID] = a
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.accounts), nil
}
