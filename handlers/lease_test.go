package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spms/ledger"
	"spms/models"
)

func TestApproveCreatesLeaseWithSchedule(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	tenant := createTenant(t, db)
	prop := createRequestedProperty(t, db, tenant.ID)

	w := doJSON(t, r, "POST", "/api/manager/approve", map[string]interface{}{"propertyId": prop.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Property
	require.NoError(t, db.First(&updated, prop.ID).Error)
	assert.Equal(t, models.PropertyOccupied, updated.Status)

	var lease models.Lease
	require.NoError(t, db.Preload("Payments").Where("property_id = ?", prop.ID).First(&lease).Error)
	assert.Equal(t, tenant.ID, lease.TenantID)
	assert.Equal(t, float64(16000), lease.TotalAmount) // 5000 + 1000*11
	assert.Equal(t, float64(1000), lease.MonthlyRent)
	require.Len(t, lease.Payments, 12)

	for _, entry := range lease.Payments {
		assert.Equal(t, models.EntryPending, entry.Status)
		if entry.Seq == 0 {
			assert.Equal(t, float64(5000), entry.Amount)
		} else {
			assert.Equal(t, float64(1000), entry.Amount)
		}
	}
}

func TestApproveIsGuardedAgainstDoubleApproval(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	tenant := createTenant(t, db)
	prop := createRequestedProperty(t, db, tenant.ID)

	w := doJSON(t, r, "POST", "/api/manager/approve", map[string]interface{}{"propertyId": prop.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", "/api/manager/approve", map[string]interface{}{"propertyId": prop.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeAlreadyLeased, decodeBody(t, w)["code"])

	var count int64
	require.NoError(t, db.Model(&models.Lease{}).Where("property_id = ?", prop.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApproveMissingProperty(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, "POST", "/api/manager/approve", map[string]interface{}{"propertyId": 9999})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeBody(t, w)["code"])
}

func TestTenantLease(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	tenant := createTenant(t, db)
	prop := createRequestedProperty(t, db, tenant.ID)

	w := doJSON(t, r, "POST", "/api/manager/approve", map[string]interface{}{"propertyId": prop.ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/tenant/lease/%d", tenant.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/api/tenant/lease/424242", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayCurrentMonth(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	tenant := createTenant(t, db)
	prop := createRequestedProperty(t, db, tenant.ID)

	w := doJSON(t, r, "POST", "/api/manager/approve", map[string]interface{}{"propertyId": prop.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var lease models.Lease
	require.NoError(t, db.Where("property_id = ?", prop.ID).First(&lease).Error)

	w = doJSON(t, r, "POST", "/api/lease/pay", map[string]interface{}{"leaseId": lease.ID, "type": "initial"})
	require.Equal(t, http.StatusOK, w.Code)

	label := ledger.MonthLabel(time.Now())
	var entry models.PaymentEntry
	require.NoError(t, db.Where("lease_id = ? AND month = ?", lease.ID, label).First(&entry).Error)
	assert.Equal(t, models.EntryPaid, entry.Status)
	assert.NotNil(t, entry.PaidAt)

	// Same month twice is rejected.
	w = doJSON(t, r, "POST", "/api/lease/pay", map[string]interface{}{"leaseId": lease.ID, "type": "monthly"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeAlreadyPaid, decodeBody(t, w)["code"])
}

func TestPayMonthNotInSchedule(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)
	tenant := createTenant(t, db)

	// Lease whose schedule ended long before the current month.
	start := time.Now().AddDate(-2, 0, 0)
	lease := models.Lease{
		PropertyID: 1, TenantID: tenant.ID,
		StartDate: start, EndDate: start.AddDate(1, 0, 0),
		TotalAmount: 16000, MonthlyRent: 1000, Status: "active",
		Payments: ledger.BuildSchedule(start, 5000, 1000),
	}
	require.NoError(t, db.Create(&lease).Error)

	w := doJSON(t, r, "POST", "/api/lease/pay", map[string]interface{}{"leaseId": lease.ID, "type": "monthly"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidInput, decodeBody(t, w)["code"])
}

func TestPayUnknownLease(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, "POST", "/api/lease/pay", map[string]interface{}{"leaseId": 31337, "type": "monthly"})
	require.Equal(t, http.StatusNotFound, w.Code)
}
