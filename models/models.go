package models

import (
	"time"

	"gorm.io/gorm"
)

// Property lifecycle states.
const (
	PropertyAvailable = "available"
	PropertyRequested = "requested"
	PropertyOccupied  = "occupied"
)

// PaymentEntry states. One-way: Pending -> Paid.
const (
	EntryPending = "Pending"
	EntryPaid    = "Paid"
)

// User stores authentication, profile and saved cards
type User struct {
	gorm.Model
	Name     string
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null" json:"-"` // Hashed
	Role     string // "manager", "tenant"
	Cards    []Card
}

// Card is a stored card-on-file reference (no real PAN kept)
type Card struct {
	gorm.Model
	UserID      uint
	CardID      string `gorm:"uniqueIndex"` // opaque token handed to the client
	Last4       string
	Brand       string
	ExpiryMonth int
	ExpiryYear  int
	CVVHash     string `json:"-"`
}

// Property is a rentable unit managed by a manager
type Property struct {
	gorm.Model
	Name         string
	Location     string
	InitialPrice float64 // one-time deposit
	Rent         float64 // monthly rent
	Status       string  `gorm:"default:available"`
	TenantID     *uint   // set when requested/occupied
	Tenant       *User   `gorm:"foreignKey:TenantID"`
}

// Lease binds a tenant to a property for one year with a 12-entry
// monthly payment ledger. PropertyID is unique: one lease per property.
type Lease struct {
	gorm.Model
	PropertyID  uint `gorm:"uniqueIndex"`
	Property    Property
	TenantID    uint
	Tenant      User
	StartDate   time.Time
	EndDate     time.Time
	TotalAmount float64 // initialPrice + rent*11
	MonthlyRent float64
	Status      string         `gorm:"default:active"` // "active", "expired"
	Payments    []PaymentEntry `gorm:"foreignKey:LeaseID"`
}

// PaymentEntry is one month of a lease's payment schedule
type PaymentEntry struct {
	gorm.Model
	LeaseID uint   `gorm:"index"`
	Seq     int    // 0..11, chronological
	Month   string // e.g. "January 2026"
	Amount  float64
	Status  string `gorm:"default:Pending"`
	PaidAt  *time.Time
}

// Payment is the append-only audit record written by the mock gateway
type Payment struct {
	gorm.Model
	UserID     uint
	PropertyID uint
	CardID     string
	Amount     float64
	Status     string // "success", "failed"
	Timestamp  time.Time
}

// EnergyReading is one synthetic meter sample for an occupied property
type EnergyReading struct {
	gorm.Model
	PropertyID uint      `gorm:"index" json:"propertyId"`
	PowerKWh   float64   `gorm:"column:power_kwh" json:"power_kWh"`
	VoltageV   float64   `gorm:"column:voltage_v" json:"voltage_V"`
	CurrentA   float64   `gorm:"column:current_a" json:"current_A"`
	TempC      float64   `gorm:"column:temp_c" json:"temp_C"`
	Humidity   float64   `gorm:"column:humidity" json:"humidity"`
	Timestamp  time.Time `gorm:"index" json:"timestamp"`
}
