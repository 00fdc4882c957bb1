package projections

import (
	"context"
	"errors"
	"time"

	gymclassStore "gymdesk/internal/adapters/storage/gymclass"
	memberStore "gymdesk/internal/adapters/storage/member"
	paymentStore "gymdesk/internal/adapters/storage/payment"
	productStore "gymdesk/internal/adapters/storage/product"
	domainAttendance "gymdesk/internal/domain/attendance"
	domainClass "gymdesk/internal/domain/gymclass"
	domainMember "gymdesk/internal/domain/member"
	domainPayment "gymdesk/internal/domain/payment"
	domainPlan "gymdesk/internal/domain/plan"
	domainProduct "gymdesk/internal/domain/product"
)

// date builds a local midnight time for fixtures.
func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

type mockProjMemberStore struct {
	members []domainMember.Member
}

func (m *mockProjMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	for _, mem := range m.members {
		if mem.ID == id {
			return mem, nil
		}
	}
	return domainMember.Member{}, errors.New("not found")
}

func (m *mockProjMemberStore) List(_ context.Context, filter memberStore.ListFilter) ([]domainMember.Member, error) {
	var result []domainMember.Member
	for _, mem := range m.members {
		if mem.Archived && !filter.IncludeArchived {
			continue
		}
		result = append(result, mem)
	}
	return result, nil
}

func (m *mockProjMemberStore) Count(_ context.Context, filter memberStore.ListFilter) (int, error) {
	listed, _ := m.List(context.Background(), filter)
	return len(listed), nil
}

type mockProjPlanStore struct {
	plans map[string]domainPlan.Plan
}

func (m *mockProjPlanStore) GetByID(_ context.Context, id string) (domainPlan.Plan, error) {
	p, ok := m.plans[id]
	if !ok {
		return domainPlan.Plan{}, errors.New("not found")
	}
	return p, nil
}

type mockProjAttendanceStore struct {
	records []domainAttendance.Attendance
}

func (m *mockProjAttendanceStore) ListByDate(_ context.Context, date string) ([]domainAttendance.Attendance, error) {
	var result []domainAttendance.Attendance
	for _, a := range m.records {
		if a.EntryTime.Format("2006-01-02") == date {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockProjAttendanceStore) ListByMemberID(_ context.Context, memberID string) ([]domainAttendance.Attendance, error) {
	// Newest first, mirroring the SQLite store's ordering.
	var result []domainAttendance.Attendance
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].MemberID == memberID {
			result = append(result, m.records[i])
		}
	}
	return result, nil
}

func (m *mockProjAttendanceStore) CountByDate(ctx context.Context, date string) (int, error) {
	listed, _ := m.ListByDate(ctx, date)
	return len(listed), nil
}

type mockProjPaymentStore struct {
	payments []domainPayment.Payment
}

func (m *mockProjPaymentStore) List(_ context.Context, _ paymentStore.ListFilter) ([]domainPayment.Payment, error) {
	return m.payments, nil
}

func (m *mockProjPaymentStore) SumCompletedByDateRange(_ context.Context, startDate, endDate string) (float64, error) {
	var sum float64
	for _, p := range m.payments {
		day := p.PaymentDate.Format("2006-01-02")
		if p.IsCompleted() && day >= startDate && day <= endDate {
			sum += p.Amount
		}
	}
	return sum, nil
}

type mockProjClassStore struct {
	classes []domainClass.Class
}

func (m *mockProjClassStore) GetByID(_ context.Context, id string) (domainClass.Class, error) {
	for _, c := range m.classes {
		if c.ID == id {
			return c, nil
		}
	}
	return domainClass.Class{}, errors.New("not found")
}

func (m *mockProjClassStore) List(_ context.Context, filter gymclassStore.ListFilter) ([]domainClass.Class, error) {
	var result []domainClass.Class
	for _, c := range m.classes {
		if filter.Weekday != "" && c.Weekday != filter.Weekday {
			continue
		}
		if filter.OnlyActive && !c.Active {
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

type mockProjBookingStore struct {
	counts map[string]int // "classID|date" -> active bookings
}

func (m *mockProjBookingStore) CountActiveByClassAndDate(_ context.Context, classID, date string) (int, error) {
	return m.counts[classID+"|"+date], nil
}

type mockProjProductStore struct {
	products []domainProduct.Product
}

func (m *mockProjProductStore) List(_ context.Context, filter productStore.ListFilter) ([]domainProduct.Product, error) {
	var result []domainProduct.Product
	for _, p := range m.products {
		if filter.LowStockOnly && !p.IsLowStock() {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}
