// Package ledger owns the 12-entry monthly payment schedule attached to a
// lease and the rules for marking entries paid. Both payment endpoints go
// through the same conditional Pending -> Paid transition, so concurrent
// calls can never double-advance an entry.
package ledger

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"spms/models"
)

const ScheduleMonths = 12

var (
	// ErrNoEntry means the ledger has no record for the requested month.
	ErrNoEntry = errors.New("no payment record found for this month")
	// ErrAlreadyPaid guards against paying the same month twice.
	ErrAlreadyPaid = errors.New("this month is already paid")
)

// MonthLabel is the canonical label format for a schedule entry.
func MonthLabel(t time.Time) string {
	return t.Format("January 2006")
}

// BuildSchedule creates the full 12-month schedule starting at start.
// Entry 0 carries the initial deposit, entries 1-11 the monthly rent.
// Everything starts Pending; the deposit is collected like any other entry.
func BuildSchedule(start time.Time, initialPrice, rent float64) []models.PaymentEntry {
	entries := make([]models.PaymentEntry, 0, ScheduleMonths)
	for i := 0; i < ScheduleMonths; i++ {
		monthStart := time.Date(start.Year(), start.Month()+time.Month(i), 1, 0, 0, 0, 0, start.Location())
		amount := rent
		if i == 0 {
			amount = initialPrice
		}
		entries = append(entries, models.PaymentEntry{
			Seq:    i,
			Month:  MonthLabel(monthStart),
			Amount: amount,
			Status: models.EntryPending,
		})
	}
	return entries
}

// Service mutates lease payment schedules.
type Service struct {
	DB *gorm.DB
}

// Advance applies the sequential-unlock policy for a successful payment:
// initialize the schedule if the lease has none yet (entry 0 already Paid,
// the deposit having been satisfied at approval), otherwise flip the first
// Pending entry. A fully paid ledger is a logged no-op.
func (s *Service) Advance(lease *models.Lease) error {
	var count int64
	if err := s.DB.Model(&models.PaymentEntry{}).Where("lease_id = ?", lease.ID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return s.initSchedule(lease)
	}

	advanced, err := s.PayNext(lease.ID)
	if err != nil {
		return err
	}
	if !advanced {
		log.Printf("ledger: lease %d already fully paid", lease.ID)
	}
	return nil
}

// PayNext flips the earliest Pending entry to Paid. Returns false when no
// Pending entry remains. Losing the conditional update to a concurrent
// caller just moves on to the next entry.
func (s *Service) PayNext(leaseID uint) (bool, error) {
	var pending []models.PaymentEntry
	err := s.DB.Where("lease_id = ? AND status = ?", leaseID, models.EntryPending).
		Order("seq asc").Find(&pending).Error
	if err != nil {
		return false, err
	}

	for i := range pending {
		won, err := s.markPaid(pending[i].ID)
		if err != nil {
			return false, err
		}
		if won {
			return true, nil
		}
	}
	return false, nil
}

// PayMonth flips the entry carrying the given month label. Used by the
// explicit lease-pay path, where the caller pays the current calendar month.
func (s *Service) PayMonth(leaseID uint, label string) (*models.PaymentEntry, error) {
	var entry models.PaymentEntry
	err := s.DB.Where("lease_id = ? AND month = ?", leaseID, label).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoEntry
	}
	if err != nil {
		return nil, err
	}

	if entry.Status == models.EntryPaid {
		return nil, ErrAlreadyPaid
	}

	won, err := s.markPaid(entry.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		// A concurrent caller got there first.
		return nil, ErrAlreadyPaid
	}

	if err := s.DB.First(&entry, entry.ID).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// markPaid performs the atomic Pending -> Paid transition. The status
// predicate in the WHERE clause makes the flip exactly-once under
// concurrent callers.
func (s *Service) markPaid(entryID uint) (bool, error) {
	now := time.Now()
	res := s.DB.Model(&models.PaymentEntry{}).
		Where("id = ? AND status = ?", entryID, models.EntryPending).
		Updates(map[string]interface{}{"status": models.EntryPaid, "paid_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// initSchedule lazily creates the 12-month schedule for a lease that was
// approved before schedules were materialized. Entry 0 is recorded as Paid:
// the deposit was settled when the lease was approved.
func (s *Service) initSchedule(lease *models.Lease) error {
	start := lease.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	initial := lease.TotalAmount - lease.MonthlyRent*float64(ScheduleMonths-1)
	entries := BuildSchedule(start, initial, lease.MonthlyRent)

	now := time.Now()
	entries[0].Status = models.EntryPaid
	entries[0].PaidAt = &now
	for i := range entries {
		entries[i].LeaseID = lease.ID
	}
	return s.DB.Create(&entries).Error
}
