package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"spms/ledger"
	"spms/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Card{}, &models.Property{},
		&models.Lease{}, &models.PaymentEntry{}, &models.Payment{},
		&models.EnergyReading{},
	))
	return db
}

// newTestRouter wires the JSON API without the session middleware so tests
// can hit routes directly.
func newTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	ledgerSvc := &ledger.Service{DB: db}
	userHandler := &UserHandler{DB: db}
	propertyHandler := &PropertyHandler{DB: db}
	leaseHandler := &LeaseHandler{DB: db, Ledger: ledgerSvc}
	paymentHandler := &PaymentHandler{DB: db, Ledger: ledgerSvc, Delay: 0}
	energyHandler := &EnergyHandler{DB: db}

	r.GET("/api/user/:id", userHandler.GetUser)
	r.POST("/api/cards/save", userHandler.SaveCard)
	r.GET("/api/properties", propertyHandler.List)
	r.POST("/api/properties", propertyHandler.Create)
	r.POST("/api/tenant/request", propertyHandler.Request)
	r.GET("/api/manager/requests", propertyHandler.Requests)
	r.POST("/api/manager/approve", leaseHandler.Approve)
	r.GET("/api/tenant/lease/:tenantId", leaseHandler.TenantLease)
	r.POST("/api/lease/pay", leaseHandler.Pay)
	r.POST("/api/payments/mock", paymentHandler.Mock)
	r.GET("/api/energy/live", energyHandler.Live)
	r.GET("/api/energy/summary", energyHandler.Summary)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func createTenant(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Name: "Tina Tenant", Email: "tina@example.com", Password: "x", Role: "tenant"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createRequestedProperty(t *testing.T, db *gorm.DB, tenantID uint) *models.Property {
	t.Helper()
	prop := models.Property{
		Name: "Maple Court 2B", Location: "12 Maple St",
		InitialPrice: 5000, Rent: 1000,
		Status: models.PropertyRequested, TenantID: &tenantID,
	}
	require.NoError(t, db.Create(&prop).Error)
	return &prop
}
