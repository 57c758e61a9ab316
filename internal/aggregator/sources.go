package aggregator

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/arafat90/clientflow/backend/internal/models"
	"gorm.io/gorm"
)

const (
	lookbackWindow = 7 * 24 * time.Hour // assignment sources: created in the last 7 days
	dueWindow      = 7 * 24 * time.Hour // due-date sources: due within 7 days
	taskDueWindow  = 3 * 24 * time.Hour
)

func localID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func hasRole(user *models.User, roles ...string) bool {
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}

// dueDatePriority escalates by proximity: overdue is urgent, due
// today high, anything further out medium.
func dueDatePriority(due, now time.Time) string {
	if due.Before(now) {
		return models.PriorityUrgent
	}
	if due.Year() == now.Year() && due.YearDay() == now.YearDay() {
		return models.PriorityHigh
	}
	return models.PriorityMedium
}

// todayPriority is the softer variant for reminders and calls: high
// when due today (or already past), medium otherwise.
func todayPriority(due, now time.Time) string {
	if due.Before(now) || (due.Year() == now.Year() && due.YearDay() == now.YearDay()) {
		return models.PriorityHigh
	}
	return models.PriorityMedium
}

// ReminderSource surfaces the user's own pending reminders due within
// seven days. Applies to every role.
type ReminderSource struct {
	db *gorm.DB
}

func NewReminderSource(db *gorm.DB) *ReminderSource { return &ReminderSource{db: db} }

func (s *ReminderSource) Kind() SourceKind { return SourceReminder }

func (s *ReminderSource) AppliesTo(user *models.User) bool { return true }

func (s *ReminderSource) Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error) {
	now := time.Now()
	var reminders []models.Reminder
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ? AND due_at <= ?", user.ID, "pending", now.Add(dueWindow)).
		Find(&reminders).Error
	if err != nil {
		return nil, err
	}

	items := make([]FeedNotification, 0, len(reminders))
	for _, r := range reminders {
		items = append(items, mapReminder(r, now))
	}
	return items, nil
}

func mapReminder(r models.Reminder, now time.Time) FeedNotification {
	due := r.DueAt
	return FeedNotification{
		ID:         FeedID{Source: SourceReminder, LocalID: localID(r.ID)},
		Type:       models.NotifTypeReminder,
		Title:      "Reminder: " + r.Title,
		Message:    r.Notes,
		EntityType: "reminder",
		EntityID:   localID(r.ID),
		Priority:   todayPriority(due, now),
		DueDate:    &due,
		CreatedAt:  r.CreatedAt,
	}
}

// ScheduleSource surfaces the user's own upcoming lead calls within
// seven days. Applies to every role.
type ScheduleSource struct {
	db *gorm.DB
}

func NewScheduleSource(db *gorm.DB) *ScheduleSource { return &ScheduleSource{db: db} }

func (s *ScheduleSource) Kind() SourceKind { return SourceLeadSchedule }

func (s *ScheduleSource) AppliesTo(user *models.User) bool { return true }

func (s *ScheduleSource) Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error) {
	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var schedules []models.LeadSchedule
	err := s.db.WithContext(ctx).
		Where("scheduled_by = ? AND scheduled_at >= ? AND scheduled_at <= ?", user.ID, todayStart, now.Add(dueWindow)).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}

	items := make([]FeedNotification, 0, len(schedules))
	for _, sc := range schedules {
		items = append(items, mapSchedule(sc, now))
	}
	return items, nil
}

func mapSchedule(sc models.LeadSchedule, now time.Time) FeedNotification {
	at := sc.ScheduledAt
	return FeedNotification{
		ID:         FeedID{Source: SourceLeadSchedule, LocalID: localID(sc.ID)},
		Type:       models.NotifTypeScheduledCall,
		Title:      "Scheduled call: " + sc.LeadName,
		Message:    fmt.Sprintf("Call with %s at %s", sc.LeadName, at.Format("Jan 2 15:04")),
		EntityType: "lead",
		EntityID:   localID(sc.LeadID),
		Priority:   todayPriority(at, now),
		DueDate:    &at,
		CreatedAt:  sc.CreatedAt,
	}
}

// TaskAssignedSource surfaces tasks assigned to the user (directly or
// via active task membership) in the last seven days.
type TaskAssignedSource struct {
	db *gorm.DB
}

func NewTaskAssignedSource(db *gorm.DB) *TaskAssignedSource { return &TaskAssignedSource{db: db} }

func (s *TaskAssignedSource) Kind() SourceKind { return SourceTaskAssigned }

func (s *TaskAssignedSource) AppliesTo(user *models.User) bool { return true }

func (s *TaskAssignedSource) Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error) {
	cutoff := time.Now().Add(-lookbackWindow)
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Where("assigned_to = ? OR id IN (?)", user.ID,
			s.db.Model(&models.TaskMember{}).Select("task_id").Where("user_id = ? AND is_active = true", user.ID)).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	items := make([]FeedNotification, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, mapTaskAssigned(t))
	}
	return items, nil
}

func mapTaskAssigned(t models.Task) FeedNotification {
	return FeedNotification{
		ID:         FeedID{Source: SourceTaskAssigned, LocalID: localID(t.ID)},
		Type:       models.NotifTypeTaskAssigned,
		Title:      "Task assigned: " + t.Title,
		Message:    "You were added to this task",
		EntityType: "task",
		EntityID:   localID(t.ID),
		Priority:   models.PriorityMedium,
		DueDate:    t.DueDate,
		CreatedAt:  t.CreatedAt,
	}
}

// TaskDueSource surfaces production users' open tasks due within three
// days, including overdue ones.
type TaskDueSource struct {
	db *gorm.DB
}

func NewTaskDueSource(db *gorm.DB) *TaskDueSource { return &TaskDueSource{db: db} }

func (s *TaskDueSource) Kind() SourceKind { return SourceTaskDue }

func (s *TaskDueSource) AppliesTo(user *models.User) bool {
	return hasRole(user, models.RoleProduction)
}

func (s *TaskDueSource) Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error) {
	now := time.Now()
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date <= ?", now.Add(taskDueWindow)).
		Where("status NOT IN ?", []string{"completed", "cancelled"}).
		Where("assigned_to = ? OR id IN (?)", user.ID,
			s.db.Model(&models.TaskMember{}).Select("task_id").Where("user_id = ? AND is_active = true", user.ID)).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	items := make([]FeedNotification, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, mapTaskDue(t, now))
	}
	return items, nil
}

func mapTaskDue(t models.Task, now time.Time) FeedNotification {
	priority := models.PriorityMedium
	if t.DueDate != nil {
		priority = todayPriority(*t.DueDate, now)
	}
	return FeedNotification{
		ID:         FeedID{Source: SourceTaskDue, LocalID: localID(t.ID)},
		Type:       models.NotifTypeTaskDue,
		Title:      "Task due soon: " + t.Title,
		Message:    "This task is approaching its due date",
		EntityType: "task",
		EntityID:   localID(t.ID),
		Priority:   priority,
		DueDate:    t.DueDate,
		CreatedAt:  t.CreatedAt,
	}
}

// ProjectAssignedSource surfaces recent projects where the user holds
// the upseller or project-manager seat. Upseller, admin and
// front-sales-manager roles only.
type ProjectAssignedSource struct {
	db *gorm.DB
}

func NewProjectAssignedSource(db *gorm.DB) *ProjectAssignedSource {
	return &ProjectAssignedSource{db: db}
}

func (s *ProjectAssignedSource) Kind() SourceKind { return SourceProject }

func (s *ProjectAssignedSource) AppliesTo(user *models.User) bool {
	return hasRole(user, models.RoleUpseller, models.RoleAdmin, models.RoleFrontSalesManager)
}

func (s *ProjectAssignedSource) Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error) {
	cutoff := time.Now().Add(-lookbackWindow)
	var projects []models.Project
	err := s.db.WithContext(ctx).
		Where("created_at >= ?", cutoff).
		Where("assigned_upseller_id = ? OR project_manager_id = ?", user.ID, user.ID).
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	items := make([]FeedNotification, 0, len(projects))
	for _, p := range projects {
		items = append(items, mapProject(p))
	}
	return items, nil
}

func mapProject(p models.Project) FeedNotification {
	return FeedNotification{
		ID:         FeedID{Source: SourceProject, LocalID: localID(p.ID)},
		Type:       models.NotifTypeProjectAssigned,
		Title:      "Project assigned: " + p.Name,
		Message:    "You were assigned to this project",
		EntityType: "project",
		EntityID:   localID(p.ID),
		Priority:   models.PriorityMedium,
		CreatedAt:  p.CreatedAt,
	}
}

// CustomerAssignedSource surfaces active customer assignments created
// in the last seven days. Upseller and admin roles only.
type CustomerAssignedSource struct {
	db *gorm.DB
}

func NewCustomerAssignedSource(db *gorm.DB) *CustomerAssignedSource {
	return &CustomerAssignedSource{db: db}
}

func (s *CustomerAssignedSource) Kind() SourceKind { return SourceCustomer }

func (s *CustomerAssignedSource) AppliesTo(user *models.User) bool {
	return hasRole(user, models.RoleUpseller, models.RoleAdmin)
}

func (s *CustomerAssignedSource) Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error) {
	cutoff := time.Now().Add(-lookbackWindow)
	var assignments []models.CustomerAssignment
	err := s.db.WithContext(ctx).
		Where("assigned_to = ? AND is_active = true AND created_at >= ?", user.ID, cutoff).
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	items := make([]FeedNotification, 0, len(assignments))
	for _, a := range assignments {
		items = append(items, mapCustomerAssignment(a))
	}
	return items, nil
}

func mapCustomerAssignment(a models.CustomerAssignment) FeedNotification {
	assignedBy := a.AssignedBy
	return FeedNotification{
		ID:            FeedID{Source: SourceCustomer, LocalID: localID(a.ID)},
		Type:          models.NotifTypeCustomerAssigned,
		Title:         "Customer assigned: " + a.CustomerName,
		Message:       fmt.Sprintf("%s is now in your portfolio", a.CustomerName),
		EntityType:    "customer",
		EntityID:      localID(a.CustomerID),
		RelatedUserID: &assignedBy,
		Priority:      models.PriorityMedium,
		CreatedAt:     a.CreatedAt,
	}
}

// PaymentDueSource surfaces pending installments and active recurring
// payments due within seven days, overdue included. Upseller, admin
// and front-sales-manager roles only.
type PaymentDueSource struct {
	db *gorm.DB
}

func NewPaymentDueSource(db *gorm.DB) *PaymentDueSource { return &PaymentDueSource{db: db} }

func (s *PaymentDueSource) Kind() SourceKind { return SourcePayment }

func (s *PaymentDueSource) AppliesTo(user *models.User) bool {
	return hasRole(user, models.RoleUpseller, models.RoleAdmin, models.RoleFrontSalesManager)
}

func (s *PaymentDueSource) Fetch(ctx context.Context, user *models.User) ([]FeedNotification, error) {
	now := time.Now()
	horizon := now.Add(dueWindow)

	var installments []models.PaymentInstallment
	if err := s.db.WithContext(ctx).
		Where("status = ? AND due_date <= ?", "pending", horizon).
		Find(&installments).Error; err != nil {
		return nil, err
	}

	var recurring []models.RecurringPayment
	if err := s.db.WithContext(ctx).
		Where("is_active = true AND next_due_date <= ?", horizon).
		Find(&recurring).Error; err != nil {
		return nil, err
	}

	items := make([]FeedNotification, 0, len(installments)+len(recurring))
	for _, in := range installments {
		items = append(items, mapInstallment(in, now))
	}
	for _, rp := range recurring {
		items = append(items, mapRecurring(rp, now))
	}
	return items, nil
}

func mapInstallment(in models.PaymentInstallment, now time.Time) FeedNotification {
	due := in.DueDate
	return FeedNotification{
		ID:         FeedID{Source: SourcePayment, LocalID: localID(in.ID)},
		Type:       models.NotifTypePaymentDue,
		Title:      fmt.Sprintf("Payment due: $%.2f", in.Amount),
		Message:    fmt.Sprintf("Installment of $%.2f from %s is due", in.Amount, in.CustomerName),
		EntityType: "project",
		EntityID:   localID(in.ProjectID),
		Priority:   dueDatePriority(due, now),
		DueDate:    &due,
		CreatedAt:  in.CreatedAt,
	}
}

func mapRecurring(rp models.RecurringPayment, now time.Time) FeedNotification {
	due := rp.NextDueDate
	return FeedNotification{
		ID:         FeedID{Source: SourceRecurring, LocalID: localID(rp.ID)},
		Type:       models.NotifTypePaymentDue,
		Title:      fmt.Sprintf("Recurring payment due: $%.2f", rp.Amount),
		Message:    fmt.Sprintf("%s charge of $%.2f from %s is due", rp.Frequency, rp.Amount, rp.CustomerName),
		EntityType: "project",
		EntityID:   localID(rp.ProjectID),
		Priority:   dueDatePriority(due, now),
		DueDate:    &due,
		CreatedAt:  rp.CreatedAt,
	}
}
