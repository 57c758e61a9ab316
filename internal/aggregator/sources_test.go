package aggregator

import (
	"testing"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
)

func TestDueDatePriority(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		due  time.Time
		want string
	}{
		{"overdue", now.Add(-48 * time.Hour), models.PriorityUrgent},
		{"earlier today", now.Add(-2 * time.Hour), models.PriorityUrgent},
		{"later today", now.Add(4 * time.Hour), models.PriorityHigh},
		{"tomorrow", now.Add(24 * time.Hour), models.PriorityMedium},
		{"next week", now.Add(6 * 24 * time.Hour), models.PriorityMedium},
	}
	for _, tc := range cases {
		if got := dueDatePriority(tc.due, now); got != tc.want {
			t.Errorf("%s: dueDatePriority = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestTodayPriority(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		due  time.Time
		want string
	}{
		{"overdue", now.Add(-48 * time.Hour), models.PriorityHigh},
		{"later today", now.Add(4 * time.Hour), models.PriorityHigh},
		{"tomorrow", now.Add(24 * time.Hour), models.PriorityMedium},
	}
	for _, tc := range cases {
		if got := todayPriority(tc.due, now); got != tc.want {
			t.Errorf("%s: todayPriority = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestHasRole(t *testing.T) {
	upseller := &models.User{Role: models.RoleUpseller}
	if !hasRole(upseller, models.RoleUpseller, models.RoleAdmin) {
		t.Fatal("upseller should match [upseller, admin]")
	}
	if hasRole(upseller, models.RoleProduction) {
		t.Fatal("upseller should not match [production]")
	}
}

func TestMapReminder(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r := models.Reminder{
		ID:        12,
		Title:     "Call back Acme",
		Notes:     "They asked for a revised quote",
		DueAt:     now.Add(2 * time.Hour),
		CreatedAt: now.Add(-time.Hour),
	}

	n := mapReminder(r, now)
	if n.ID.String() != "reminder_12" {
		t.Fatalf("id = %q", n.ID)
	}
	if n.Type != models.NotifTypeReminder {
		t.Fatalf("type = %q", n.Type)
	}
	if n.Priority != models.PriorityHigh {
		t.Fatalf("priority = %q, want high for a reminder due today", n.Priority)
	}
	if n.DueDate == nil || !n.DueDate.Equal(r.DueAt) {
		t.Fatalf("due date = %v", n.DueDate)
	}
	if n.IsRead {
		t.Fatal("synthetic entries are never read")
	}
}

func TestMapInstallmentOverdueIsUrgent(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	in := models.PaymentInstallment{
		ID:           3,
		ProjectID:    44,
		CustomerName: "Globex",
		Amount:       1200.50,
		DueDate:      now.Add(-24 * time.Hour),
		CreatedAt:    now.Add(-72 * time.Hour),
	}

	n := mapInstallment(in, now)
	if n.ID.String() != "payment_3" {
		t.Fatalf("id = %q", n.ID)
	}
	if n.Priority != models.PriorityUrgent {
		t.Fatalf("priority = %q, want urgent for overdue installment", n.Priority)
	}
	if n.EntityType != "project" || n.EntityID != "44" {
		t.Fatalf("entity = %s/%s", n.EntityType, n.EntityID)
	}
}

func TestMapRecurringUsesRecurringSourceTag(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rp := models.RecurringPayment{
		ID:           3, // same local id as an installment must not collide
		ProjectID:    44,
		CustomerName: "Globex",
		Amount:       99,
		Frequency:    "monthly",
		NextDueDate:  now.Add(48 * time.Hour),
		CreatedAt:    now.Add(-time.Hour),
	}

	n := mapRecurring(rp, now)
	if n.ID.String() != "recurring_3" {
		t.Fatalf("id = %q", n.ID)
	}
	if n.Type != models.NotifTypePaymentDue {
		t.Fatalf("type = %q", n.Type)
	}
	if n.Priority != models.PriorityMedium {
		t.Fatalf("priority = %q", n.Priority)
	}
}

func TestMapCustomerAssignmentCarriesAssigner(t *testing.T) {
	a := models.CustomerAssignment{
		ID:           8,
		CustomerID:   101,
		CustomerName: "Initech",
		AssignedTo:   5,
		AssignedBy:   2,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	n := mapCustomerAssignment(a)
	if n.ID.String() != "customer_8" {
		t.Fatalf("id = %q", n.ID)
	}
	if n.RelatedUserID == nil || *n.RelatedUserID != 2 {
		t.Fatalf("related user = %v, want assigner 2", n.RelatedUserID)
	}
	if n.EntityID != "101" {
		t.Fatalf("entity id = %q, want the customer id", n.EntityID)
	}
}

func TestMapTaskDuePriorityTracksDueDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	due := now.Add(3 * time.Hour)
	task := models.Task{ID: 20, Title: "Render final cut", Status: "in_progress", DueDate: &due, CreatedAt: now.Add(-time.Hour)}

	n := mapTaskDue(task, now)
	if n.ID.String() != "task_due_20" {
		t.Fatalf("id = %q", n.ID)
	}
	if n.Priority != models.PriorityHigh {
		t.Fatalf("priority = %q, want high for a task due today", n.Priority)
	}
}

func TestRoleGatesOnConcreteSources(t *testing.T) {
	upseller := &models.User{Role: models.RoleUpseller}
	production := &models.User{Role: models.RoleProduction}
	fsm := &models.User{Role: models.RoleFrontSalesManager}

	if (&TaskDueSource{}).AppliesTo(upseller) {
		t.Error("task-due source should be production only")
	}
	if !(&TaskDueSource{}).AppliesTo(production) {
		t.Error("task-due source should apply to production")
	}
	if (&CustomerAssignedSource{}).AppliesTo(fsm) {
		t.Error("customer source should not apply to front sales managers")
	}
	if !(&PaymentDueSource{}).AppliesTo(fsm) {
		t.Error("payment source should apply to front sales managers")
	}
	if !(&ReminderSource{}).AppliesTo(production) {
		t.Error("reminder source should apply to every role")
	}
}
