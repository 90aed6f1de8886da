package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Department is the organizational unit a project belongs to.
type Department string

const (
	DepartmentIT         Department = "IT"
	DepartmentHR         Department = "HR"
	DepartmentFinance    Department = "Finance"
	DepartmentMarketing  Department = "Marketing"
	DepartmentOperations Department = "Operations"
	DepartmentSales      Department = "Sales"
)

func Departments() []Department {
	return []Department{
		DepartmentIT, DepartmentHR, DepartmentFinance,
		DepartmentMarketing, DepartmentOperations, DepartmentSales,
	}
}

func (d Department) Valid() bool {
	switch d {
	case DepartmentIT, DepartmentHR, DepartmentFinance,
		DepartmentMarketing, DepartmentOperations, DepartmentSales:
		return true
	}
	return false
}

// Location is the office a project is run from.
type Location string

const (
	LocationPune      Location = "Pune"
	LocationMumbai    Location = "Mumbai"
	LocationBangalore Location = "Bangalore"
	LocationHyderabad Location = "Hyderabad"
	LocationGurugram  Location = "Gurugram"
	LocationNoida     Location = "Noida"
	LocationNagpur    Location = "Nagpur"
	LocationWardha    Location = "Wardha"
)

func (l Location) Valid() bool {
	switch l {
	case LocationPune, LocationMumbai, LocationBangalore, LocationHyderabad,
		LocationGurugram, LocationNoida, LocationNagpur, LocationWardha:
		return true
	}
	return false
}

// Status is the lifecycle state of a project. Transitions are deliberately
// unrestricted: any member value is accepted from any prior status.
type Status string

const (
	StatusRegistered Status = "Registered"
	StatusRunning    Status = "Running"
	StatusClosed     Status = "Closed"
	StatusCancelled  Status = "Cancelled"
)

func Statuses() []Status {
	return []Status{StatusRegistered, StatusRunning, StatusClosed, StatusCancelled}
}

func (s Status) Valid() bool {
	switch s {
	case StatusRegistered, StatusRunning, StatusClosed, StatusCancelled:
		return true
	}
	return false
}

// Priority ranks a project's urgency.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

type Project struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectName string     `gorm:"type:varchar(200);not null" json:"project_name"`
	Department  Department `gorm:"type:varchar(32);not null;index" json:"department"`
	Location    Location   `gorm:"type:varchar(32);not null;index" json:"location"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     time.Time  `gorm:"not null;index" json:"end_date"`
	Status      Status     `gorm:"type:varchar(16);not null;default:'Registered';index" json:"status"`
	Manager     string     `gorm:"type:text;not null" json:"manager"`
	Description string     `gorm:"type:varchar(1000)" json:"description,omitempty"`
	Priority    Priority   `gorm:"type:varchar(16);not null;default:'Medium'" json:"priority"`

	CreatedByID uuid.UUID  `gorm:"type:uuid;not null;index" json:"created_by_id"`
	UpdatedByID *uuid.UUID `gorm:"type:uuid" json:"updated_by_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null" json:"updated_at"`

	// Project <-> User
	CreatedBy *User `gorm:"foreignKey:CreatedByID;references:ID" json:"-"`
	UpdatedBy *User `gorm:"foreignKey:UpdatedByID;references:ID" json:"-"`
}

func (Project) TableName() string { return "projects" }

// IsDelayed reports whether a running project has passed its end date.
// It is computed per read and never persisted.
func (p *Project) IsDelayed(now time.Time) bool {
	return p.Status == StatusRunning && now.After(p.EndDate)
}

// DurationInDays is the planned project length, rounded up to whole days.
func (p *Project) DurationInDays() int {
	return int(math.Ceil(p.EndDate.Sub(p.StartDate).Hours() / 24))
}
