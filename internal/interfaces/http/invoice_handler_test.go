package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invorya/invoice-api/internal/application/auth"
	appbilling "github.com/invorya/invoice-api/internal/application/billing"
	"github.com/invorya/invoice-api/internal/domain"
	"github.com/invorya/invoice-api/internal/domain/entity"
	"github.com/invorya/invoice-api/internal/domain/repository"
	apphttp "github.com/invorya/invoice-api/internal/interfaces/http"
	pkgjwt "github.com/invorya/invoice-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes de infraestructura para ejercitar la API completa con app.Test.
// Replican las convenciones del storage real: (nil, nil) para no-encontrado y
// ErrConflict en números duplicados.
// ──────────────────────────────────────────────────────────────────────────────

type fakeInvoiceStore struct {
	byID  map[string]*entity.Invoice
	order []string
}

func newFakeInvoiceStore() *fakeInvoiceStore {
	return &fakeInvoiceStore{byID: make(map[string]*entity.Invoice)}
}

func (s *fakeInvoiceStore) Create(inv *entity.Invoice) error {
	for _, existing := range s.byID {
		if existing.InvoiceNumber == inv.InvoiceNumber {
			return fmt.Errorf("invoice number duplicado: %w", domain.ErrConflict)
		}
	}
	cp := *inv
	s.byID[inv.ID] = &cp
	s.order = append(s.order, inv.ID)
	return nil
}

func (s *fakeInvoiceStore) GetByID(id string) (*entity.Invoice, error) {
	inv, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (s *fakeInvoiceStore) GetLatest() (*entity.Invoice, error) {
	if len(s.order) == 0 {
		return nil, nil
	}
	cp := *s.byID[s.order[len(s.order)-1]]
	return &cp, nil
}

func (s *fakeInvoiceStore) ListAll() ([]*entity.Invoice, error) {
	out := make([]*entity.Invoice, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeInvoiceStore) ListByCreator(userID string) ([]*entity.Invoice, error) {
	all, _ := s.ListAll()
	out := make([]*entity.Invoice, 0)
	for _, inv := range all {
		if inv.CreatedBy == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *fakeInvoiceStore) Update(inv *entity.Invoice) error {
	if _, ok := s.byID[inv.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *inv
	s.byID[inv.ID] = &cp
	return nil
}

func (s *fakeInvoiceStore) Delete(id string) error {
	if _, ok := s.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

type fakeTxRunner struct {
	store *fakeInvoiceStore
}

func (r *fakeTxRunner) RunInvoice(_ context.Context, fn func(repo repository.InvoiceRepository) error) error {
	return fn(r.store)
}

type fakeUserStore struct {
	byID map[string]*entity.User
}

func (s *fakeUserStore) Create(u *entity.User) error {
	cp := *u
	s.byID[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) GetByID(id string) (*entity.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByEmail(email string) (*entity.User, error) {
	for _, u := range s.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByUsernameOrEmail(username, email string) (*entity.User, error) {
	for _, u := range s.byID {
		if u.Username == username || u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

type stubPDFGenerator struct{}

func (stubPDFGenerator) GenerateInvoicePDF(context.Context, *entity.Invoice) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

// buildAPI levanta la API completa sobre fakes en memoria.
func buildAPI() (*fiber.App, *fakeInvoiceStore) {
	store := newFakeInvoiceStore()
	users := &fakeUserStore{byID: make(map[string]*entity.User)}

	invoiceUC := appbilling.NewInvoiceUseCase(&fakeTxRunner{store: store}, store)
	pdfUC := appbilling.NewPDFUseCase(store, stubPDFGenerator{})
	authUC := auth.NewAuthUseCase(users, auth.JWTConfig{
		Secret:     testJWTSecret,
		ExpMinutes: testExpMin,
		Issuer:     testIssuer,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		InvoiceUC:  invoiceUC,
		InvoicePDF: pdfUC,
		AuthUC:     authUC,
		JWTSecret:  testJWTSecret,
	})
	return app, store
}

const (
	adminID = "00000000-0000-0000-0000-00000000000a"
	userID  = "00000000-0000-0000-0000-00000000000b"
)

func bearerFor(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, id, role, testIssuer, testExpMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

func jsonRequest(t *testing.T, method, path, token string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return req
}

func createPayload() map[string]interface{} {
	return map[string]interface{}{
		"customer": map[string]string{"name": "ACME S.A.S", "email": "compras@acme.com"},
		"items": []map[string]interface{}{
			{"name": "Widget", "quantity": 2, "unit_price": "50.00"},
		},
		"due_date":  "2099-01-01T00:00:00Z",
		"tax_rates": []map[string]string{{"name": "IVA", "rate": "10"}},
		"discounts": []map[string]string{{"name": "Promo", "amount": "5.00"}},
	}
}

// createInvoice helper: crea una factura como admin y devuelve el body decodificado.
func createInvoice(t *testing.T, app *fiber.App) map[string]interface{} {
	t.Helper()
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/invoices", bearerFor(t, adminID, "admin"), createPayload()), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/invoices
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CrearFactura_AdminOK(t *testing.T) {
	app, _ := buildAPI()
	body := createInvoice(t, app)

	assert.Equal(t, "INV-000001", body["invoice_number"])
	total, err := decimal.NewFromString(fmt.Sprint(body["total_amount"]))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("105.00").Equal(total),
		"total esperado 105.00, obtenido %s", total)
	assert.Equal(t, "pending", body["payment_status"])
	assert.Equal(t, adminID, body["created_by"])
}

func TestAPI_CrearFactura_UserForbidden(t *testing.T) {
	app, store := buildAPI()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/invoices", bearerFor(t, userID, "user"), createPayload()), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, store.order, "nada debe persistirse")
}

func TestAPI_CrearFactura_SinToken401(t *testing.T) {
	app, _ := buildAPI()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/invoices", "", createPayload()), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_CrearFactura_PayloadInvalido400ConCampo(t *testing.T) {
	app, _ := buildAPI()

	payload := createPayload()
	payload["items"] = []map[string]interface{}{}
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/invoices", bearerFor(t, adminID, "admin"), payload), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Equal(t, "items", body["field"], "el error identifica el campo ofensor")
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/invoices y GET /api/invoices/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ListarFacturas_AlcancePorRol(t *testing.T) {
	app, store := buildAPI()
	created := createInvoice(t, app)

	// Reasignar una factura al user directamente en storage.
	inv := store.byID[created["id"].(string)]
	inv.CreatedBy = userID
	createInvoice(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/invoices", bearerFor(t, adminID, "admin"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var adminList []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&adminList))
	assert.Len(t, adminList, 2, "admin ve todas")

	resp2, err := app.Test(jsonRequest(t, http.MethodGet, "/api/invoices", bearerFor(t, userID, "user"), nil), -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	var userList []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&userList))
	assert.Len(t, userList, 1, "user solo ve lo propio")
}

func TestAPI_ObtenerFactura_NoExiste404(t *testing.T) {
	app, _ := buildAPI()

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/invoices/no-existe", bearerFor(t, adminID, "admin"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ObtenerFactura_Ajena403(t *testing.T) {
	app, _ := buildAPI()
	created := createInvoice(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/invoices/"+created["id"].(string), bearerFor(t, userID, "user"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// Un id inexistente devuelve 404 incluso para user: la existencia se resuelve
// antes que la propiedad y no se filtra información.
func TestAPI_ObtenerFactura_InexistenteParaUser404(t *testing.T) {
	app, _ := buildAPI()

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/invoices/no-existe", bearerFor(t, userID, "user"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// PUT /api/invoices/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ActualizarEstado_AdminOK(t *testing.T) {
	app, _ := buildAPI()
	created := createInvoice(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/invoices/"+created["id"].(string),
		bearerFor(t, adminID, "admin"), map[string]string{"payment_status": "paid"}), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "paid", body["payment_status"])
	assert.Equal(t, created["invoice_number"], body["invoice_number"], "el consecutivo no cambia en updates")
}

func TestAPI_ActualizarEstado_UserForbiddenPorRuta(t *testing.T) {
	app, _ := buildAPI()
	created := createInvoice(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/invoices/"+created["id"].(string),
		bearerFor(t, userID, "user"), map[string]string{"payment_status": "paid"}), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "la ruta exige rol admin")
}

func TestAPI_ActualizarEstado_Invalido400(t *testing.T) {
	app, _ := buildAPI()
	created := createInvoice(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/api/invoices/"+created["id"].(string),
		bearerFor(t, adminID, "admin"), map[string]string{"payment_status": "cancelled"}), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// DELETE /api/invoices/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_EliminarFactura_AdminOK(t *testing.T) {
	app, store := buildAPI()
	created := createInvoice(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/invoices/"+created["id"].(string),
		bearerFor(t, adminID, "admin"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, store.order)
}

func TestAPI_EliminarFactura_NoExiste404(t *testing.T) {
	app, _ := buildAPI()

	resp, err := app.Test(jsonRequest(t, http.MethodDelete, "/api/invoices/no-existe",
		bearerFor(t, adminID, "admin"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/invoices/:id/pdf
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_DescargarPDF_HeadersDeDescarga(t *testing.T) {
	app, _ := buildAPI()
	created := createInvoice(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/invoices/"+created["id"].(string)+"/pdf",
		bearerFor(t, adminID, "admin"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `attachment; filename="factura_INV-000001.pdf"`)
}

func TestAPI_DescargarPDF_Ajeno403(t *testing.T) {
	app, _ := buildAPI()
	created := createInvoice(t, app)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/invoices/"+created["id"].(string)+"/pdf",
		bearerFor(t, userID, "user"), nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// /api/auth — flujo registro + login + perfil
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Auth_FlujoCompleto(t *testing.T) {
	app, _ := buildAPI()

	// Registro
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "jdoe", "email": "jdoe@acme.com", "password": "s3cret-pass",
	}), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var reg map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&reg))
	require.NotEmpty(t, reg["token"])

	// Login
	resp2, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "jdoe@acme.com", "password": "s3cret-pass",
	}), -1)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var login map[string]interface{}
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&login))
	token, _ := login["token"].(string)
	require.NotEmpty(t, token)

	// Perfil con el token emitido
	resp3, err := app.Test(jsonRequest(t, http.MethodGet, "/api/auth/profile", "Bearer "+token, nil), -1)
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)

	var profile map[string]interface{}
	require.NoError(t, json.NewDecoder(resp3.Body).Decode(&profile))
	assert.Equal(t, "jdoe", profile["username"])
}

func TestAPI_Auth_LoginCredencialesInvalidas401(t *testing.T) {
	app, _ := buildAPI()

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nadie@acme.com", "password": "cualquiera",
	}), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
