package models

import "time"

// Source tables for the notification feed. All of these are written by
// the CRM subsystems (leads, projects, tasks, payments) and are
// read-only projections here.

// Reminder is a user-owned reminder with a due time.
type Reminder struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	Status    string    `json:"status" gorm:"size:20;default:pending;index"` // pending, done, dismissed
	DueAt     time.Time `json:"due_at" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadSchedule is a call scheduled against a lead.
type LeadSchedule struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	LeadID      uint      `json:"lead_id" gorm:"index"`
	LeadName    string    `json:"lead_name"`
	ScheduledBy uint      `json:"scheduled_by" gorm:"index"`
	ScheduledAt time.Time `json:"scheduled_at" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task is a work item; assignment and due-date drive two feed sources.
type Task struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Title      string     `json:"title"`
	Status     string     `json:"status" gorm:"size:20;index"` // pending, in_progress, completed, cancelled
	AssignedTo uint       `json:"assigned_to" gorm:"index"`
	CreatedBy  uint       `json:"created_by"`
	ProjectID  *uint      `json:"project_id,omitempty" gorm:"index"`
	DueDate    *time.Time `json:"due_date,omitempty" gorm:"index"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index"`
}

// TaskMember is an additional active participant on a task.
type TaskMember struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	TaskID   uint      `json:"task_id" gorm:"uniqueIndex:idx_task_member"`
	UserID   uint      `json:"user_id" gorm:"uniqueIndex:idx_task_member;index"`
	IsActive bool      `json:"is_active" gorm:"default:true"`
	AddedAt  time.Time `json:"added_at" gorm:"autoCreateTime"`
}

// Project carries the two assignment roles the feed cares about.
type Project struct {
	ID                 uint      `json:"id" gorm:"primaryKey"`
	Name               string    `json:"name"`
	Status             string    `json:"status" gorm:"size:20;index"`
	AssignedUpsellerID *uint     `json:"assigned_upseller_id,omitempty" gorm:"index"`
	ProjectManagerID   *uint     `json:"project_manager_id,omitempty" gorm:"index"`
	CreatedAt          time.Time `json:"created_at" gorm:"index"`
}

// CustomerAssignment links a customer to the upseller responsible for them.
type CustomerAssignment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	CustomerID   uint      `json:"customer_id" gorm:"index"`
	CustomerName string    `json:"customer_name"`
	AssignedTo   uint      `json:"assigned_to" gorm:"index"`
	AssignedBy   uint      `json:"assigned_by"`
	IsActive     bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
}

// PaymentInstallment is one scheduled payment of a project's plan.
type PaymentInstallment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProjectID    uint      `json:"project_id" gorm:"index"`
	CustomerName string    `json:"customer_name"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status" gorm:"size:20;default:pending;index"` // pending, paid, cancelled
	DueDate      time.Time `json:"due_date" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecurringPayment is a repeating charge with a rolling next-due date.
type RecurringPayment struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ProjectID    uint      `json:"project_id" gorm:"index"`
	CustomerName string    `json:"customer_name"`
	Amount       float64   `json:"amount"`
	Frequency    string    `json:"frequency" gorm:"size:20"` // monthly, quarterly, yearly
	IsActive     bool      `json:"is_active" gorm:"default:true;index"`
	NextDueDate  time.Time `json:"next_due_date" gorm:"index"`
	CreatedAt    time.Time `json:"created_at"`
}
