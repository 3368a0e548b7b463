package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	checkoutservice "github.com/innovatex/planpay/internal/checkout/service"
	"github.com/innovatex/planpay/internal/config"
	ledgerdomain "github.com/innovatex/planpay/internal/ledger/domain"
	ledgerrepo "github.com/innovatex/planpay/internal/ledger/repository"
	ledgerservice "github.com/innovatex/planpay/internal/ledger/service"
	"github.com/innovatex/planpay/internal/mercadopago"
	"github.com/innovatex/planpay/internal/notifier"
	planstoredomain "github.com/innovatex/planpay/internal/planstore/domain"
	planstorerepo "github.com/innovatex/planpay/internal/planstore/repository"
	planstoreservice "github.com/innovatex/planpay/internal/planstore/service"
	reconcileservice "github.com/innovatex/planpay/internal/reconcile/service"
	"github.com/innovatex/planpay/internal/reference"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeGateway struct {
	payments    map[string]*mercadopago.Payment
	pref        *mercadopago.Preference
	search      []mercadopago.Payment
	calls       int
	searchCalls int
}

func (f *fakeGateway) GetPayment(ctx context.Context, id string) (*mercadopago.Payment, error) {
	f.calls++
	return f.payments[id], nil
}

func (f *fakeGateway) CreatePreference(ctx context.Context, req mercadopago.PreferenceRequest) (*mercadopago.Preference, error) {
	if f.pref == nil {
		return nil, mercadopago.ErrRequestFailed
	}
	return f.pref, nil
}

func (f *fakeGateway) SearchPayments(ctx context.Context, opts mercadopago.SearchOptions) ([]mercadopago.Payment, error) {
	f.searchCalls++
	return f.search, nil
}

type fakeNotifier struct {
	calls int
}

func (f *fakeNotifier) Dispatch(ctx context.Context, c notifier.Confirmation) {
	f.calls++
}

type testEnv struct {
	engine  *gin.Engine
	db      *gorm.DB
	gateway *fakeGateway
	notify  *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&planstoredomain.UserPlanRecord{},
		&ledgerdomain.SaleRecord{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	log := zap.NewNop()
	cfg := config.Config{
		Environment: "test",
		FrontendURL: "https://app.example",
	}
	gateway := &fakeGateway{}
	notify := &fakeNotifier{}

	plans := planstoreservice.New(planstoreservice.Params{DB: db, Log: log, Repo: planstorerepo.Provide()})
	sales := ledgerservice.New(ledgerservice.Params{DB: db, Log: log, GenID: node, Repo: ledgerrepo.Provide()})
	checkout := checkoutservice.New(checkoutservice.Params{Cfg: cfg, Log: log, Gateway: gateway})
	reconcile := reconcileservice.New(reconcileservice.Params{
		Cfg:      cfg,
		Log:      log,
		Gateway:  gateway,
		Plans:    plans,
		Ledger:   sales,
		Notifier: notify,
	})

	engine := NewEngine(cfg, log)
	srv := NewServer(Params{
		Engine:       engine,
		Cfg:          cfg,
		Log:          log,
		CheckoutSvc:  checkout,
		ReconcileSvc: reconcile,
		PlanSvc:      plans,
		LedgerSvc:    sales,
		Gateway:      gateway,
	})
	srv.RegisterRoutes()

	return &testEnv{engine: engine, db: db, gateway: gateway, notify: notify}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func approvedPayment(id string) *mercadopago.Payment {
	return &mercadopago.Payment{
		ID:                mercadopago.FlexID(id),
		Status:            mercadopago.StatusApproved,
		TransactionAmount: 2,
		PaymentMethodID:   "visa",
		PaymentTypeID:     "credit_card",
		Metadata: map[string]any{
			"user_email": "a@b.com",
			"plan":       "profesional",
		},
		ExternalReference: reference.Encode("a@b.com", "profesional"),
		DateCreated:       time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreatePreference(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.pref = &mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp.example/pref-1"}

	w := env.do(t, http.MethodPost, "/api/create-preference", gin.H{
		"plan":      "profesional",
		"userEmail": "a@b.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "pref-1", body["preference_id"])
	assert.Equal(t, "https://mp.example/pref-1", body["redirectUrl"])
	assert.Equal(t, reference.Encode("a@b.com", "profesional"), body["reference"])
}

func TestCreatePreferenceRejectsUnknownPlan(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.pref = &mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp.example/pref-1"}

	w := env.do(t, http.MethodPost, "/api/create-preference", gin.H{
		"plan":      "enterprise",
		"userEmail": "a@b.com",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "validation_error", errObj["type"])
}

func TestCreatePreferenceRejectsBadIdentity(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.pref = &mercadopago.Preference{ID: "pref-1", InitPoint: "https://mp.example/pref-1"}

	w := env.do(t, http.MethodPost, "/api/create-preference", gin.H{
		"plan":      "basico",
		"userEmail": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhookIgnoresOtherEventTypes(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/webhook", gin.H{
		"type": "merchant_order",
		"data": gin.H{"id": "123"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "ignored", body["status"])
	assert.Equal(t, "event_type", body["reason"])
	assert.Equal(t, 0, env.gateway.calls)
}

func TestWebhookMissingPaymentID(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/webhook", gin.H{"type": "payment", "data": gin.H{}})
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decodeBody(t, w)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "malformed_notification", errObj["type"])
}

func TestWebhookCommitsAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.payments = map[string]*mercadopago.Payment{"pay-1": approvedPayment("pay-1")}

	payload := gin.H{"type": "payment", "data": gin.H{"id": "pay-1"}}

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/webhook", payload)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decodeBody(t, w)
		assert.Equal(t, "committed", body["status"])
	}

	var count int64
	require.NoError(t, env.db.Raw("SELECT COUNT(1) FROM sale_records").Scan(&count).Error)
	assert.EqualValues(t, 1, count)
	assert.Equal(t, 1, env.notify.calls)
}

func TestWebhookGatewayUnavailable(t *testing.T) {
	env := newTestEnv(t)
	// No payments registered: the fake returns an empty record on both the
	// initial fetch and the retry.

	w := env.do(t, http.MethodPost, "/api/webhook", gin.H{
		"type": "payment",
		"data": gin.H{"id": "pay-missing"},
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	body := decodeBody(t, w)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "gateway_unavailable", errObj["type"])
}

func TestWebhookIncompleteExtractionAcknowledged(t *testing.T) {
	env := newTestEnv(t)
	payment := approvedPayment("pay-2")
	payment.Metadata = nil
	payment.Payer = nil
	payment.ExternalReference = "garbage"
	env.gateway.payments = map[string]*mercadopago.Payment{"pay-2": payment}

	w := env.do(t, http.MethodPost, "/api/webhook", gin.H{
		"type": "payment",
		"data": gin.H{"id": "pay-2"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "incomplete_extraction", body["status"])

	var count int64
	require.NoError(t, env.db.Raw("SELECT COUNT(1) FROM sale_records").Scan(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestPlanStatusRequiresEmail(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/plan-status", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanStatusUnknownIdentity(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/plan-status?email=nobody@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, false, body["active"])
	assert.Nil(t, body["plan"])
}

func TestPlanStatusAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.payments = map[string]*mercadopago.Payment{"pay-1": approvedPayment("pay-1")}

	w := env.do(t, http.MethodPost, "/api/webhook", gin.H{"type": "payment", "data": gin.H{"id": "pay-1"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/plan-status?email=A@B.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, "profesional", body["plan"])

	last := body["lastPayment"].(map[string]any)
	assert.Equal(t, "pay-1", last["id"])
	assert.EqualValues(t, 2, last["amount"])
	assert.Equal(t, "visa", last["method"])
}

func TestListSalesFiltersWebFunnel(t *testing.T) {
	env := newTestEnv(t)

	web := approvedPayment("pay-web")
	older := approvedPayment("pay-older")
	older.DateCreated = web.DateCreated.Add(-time.Hour)

	foreign := approvedPayment("pay-foreign")
	foreign.ExternalReference = "user::c@d.com::basico"

	offline := approvedPayment("pay-ticket")
	offline.PaymentTypeID = "ticket"

	env.gateway.payments = map[string]*mercadopago.Payment{
		"pay-web":     web,
		"pay-older":   older,
		"pay-foreign": foreign,
		"pay-ticket":  offline,
	}
	for _, id := range []string{"pay-older", "pay-web", "pay-foreign", "pay-ticket"} {
		w := env.do(t, http.MethodPost, "/api/webhook", gin.H{"type": "payment", "data": gin.H{"id": id}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)

	assert.Equal(t, "pay-web", items[0]["id"])
	assert.Equal(t, "pay-older", items[1]["id"])

	first := items[0]
	assert.EqualValues(t, 2, first["monto"])
	assert.Equal(t, "visa", first["metodo"])
	assert.Equal(t, "profesional", first["plan"])
	assert.Equal(t, "approved", first["estado"])
	assert.Equal(t, "a@b.com", first["cliente"])
	assert.Equal(t, reference.Encode("a@b.com", "profesional"), first["referencia"])
	assert.Equal(t, 0, env.gateway.searchCalls, "a populated ledger must not consult the gateway")
}

func TestListSalesFallsBackToGatewaySearch(t *testing.T) {
	env := newTestEnv(t)
	env.gateway.search = []mercadopago.Payment{
		*approvedPayment("pay-1"),
		{
			ID:                "pay-foreign",
			Status:            mercadopago.StatusApproved,
			PaymentTypeID:     "credit_card",
			ExternalReference: "user::c@d.com::basico",
		},
		{
			ID:                "pay-ticket",
			Status:            mercadopago.StatusApproved,
			PaymentTypeID:     "ticket",
			ExternalReference: reference.Encode("e@f.com", "basico"),
		},
	}

	w := env.do(t, http.MethodGet, "/api/sales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.gateway.searchCalls)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "pay-1", item["id"])
	assert.EqualValues(t, 2, item["monto"])
	assert.Equal(t, "visa", item["metodo"])
	assert.Equal(t, "profesional", item["plan"])
	assert.Equal(t, "a@b.com", item["cliente"])
	assert.Equal(t, "approved", item["estado"])
}

func TestPlanStatusEncodedEmail(t *testing.T) {
	env := newTestEnv(t)
	payment := approvedPayment("pay-1")
	payment.Metadata = map[string]any{"user_email": "a+tag@b.com", "plan": "basico"}
	payment.ExternalReference = reference.Encode("a+tag@b.com", "basico")
	env.gateway.payments = map[string]*mercadopago.Payment{"pay-1": payment}

	w := env.do(t, http.MethodPost, "/api/webhook", gin.H{"type": "payment", "data": gin.H{"id": "pay-1"}})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/plan-status?email=a%2Btag%40b.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, "basico", body["plan"])
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := NewEngine(config.Config{
		Environment:    "test",
		AllowedOrigins: []string{"https://app.example"},
	}, zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/api/webhook", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
}
