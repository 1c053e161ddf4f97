package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/empresasintegra/leykarin/pkg/model"
)

type fakeComplaintQueries struct {
	byCode     map[string]*model.Complaint
	byPublicID map[string][]model.Complaint
}

func (f *fakeComplaintQueries) GetByCode(_ context.Context, code string) (*model.Complaint, error) {
	return f.byCode[code], nil
}

func (f *fakeComplaintQueries) ByComplainantPublicID(_ context.Context, publicID string) ([]model.Complaint, error) {
	return f.byPublicID[publicID], nil
}

type fakeComplainantQueries struct {
	byRUT      map[string]*model.Complainant
	byPublicID map[string]*model.Complainant
}

func (f *fakeComplainantQueries) FindByRUT(_ context.Context, canonical string) (*model.Complainant, error) {
	return f.byRUT[canonical], nil
}

func (f *fakeComplainantQueries) FindByPublicID(_ context.Context, publicID string) (*model.Complainant, error) {
	return f.byPublicID[publicID], nil
}

type fakeForum struct {
	messages map[string][]model.ForumMessage
	appended []*model.ForumMessage
}

func (f *fakeForum) Append(_ context.Context, message *model.ForumMessage) error {
	f.appended = append(f.appended, message)
	return nil
}

func (f *fakeForum) List(_ context.Context, code string) ([]model.ForumMessage, error) {
	return f.messages[code], nil
}

func (f *fakeForum) MarkRead(_ context.Context, _ string) error { return nil }

func (f *fakeForum) UnreadCount(_ context.Context, _ string) (int64, error) { return 0, nil }

func queryTestRouter(complaints *fakeComplaintQueries, complainants *fakeComplainantQueries, forum *fakeForum) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewQueryHandler(complaints, complainants, forum, zap.NewNop())

	r := gin.New()
	r.POST("/consulta", handler.Consulta)
	r.POST("/validate-rut", handler.ValidateRUT)
	r.POST("/autocomplete-user", handler.AutocompleteUser)
	r.POST("/mensaje", handler.PublicMessage)
	return r
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestValidateRUT(t *testing.T) {
	router := queryTestRouter(&fakeComplaintQueries{}, &fakeComplainantQueries{}, &fakeForum{})

	recorder := postJSON(t, router, "/validate-rut", map[string]string{"rut": "12345678-5"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["valido"] != true {
		t.Fatalf("expected valido=true, got %v", body["valido"])
	}
	if body["rut_formateado"] != "12.345.678-5" {
		t.Fatalf("unexpected formatted rut %v", body["rut_formateado"])
	}
}

func TestValidateRUTBadVerifier(t *testing.T) {
	router := queryTestRouter(&fakeComplaintQueries{}, &fakeComplainantQueries{}, &fakeForum{})

	recorder := postJSON(t, router, "/validate-rut", map[string]string{"rut": "12345678-9"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["valido"] != false {
		t.Fatalf("expected valido=false, got %v", body["valido"])
	}
}

func TestConsultaByComplaintCode(t *testing.T) {
	complaints := &fakeComplaintQueries{
		byCode: map[string]*model.Complaint{
			"DN-ABCD1234": {
				Code:        "DN-ABCD1234",
				Status:      model.StatusEnRevision,
				Description: "descripción",
				CreatedAt:   time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC),
			},
		},
	}
	router := queryTestRouter(complaints, &fakeComplainantQueries{}, &fakeForum{})

	recorder := postJSON(t, router, "/consulta", map[string]string{"codigo": "dn-abcd1234"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	denuncia, ok := body["denuncia"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected denuncia object, got %v", body["denuncia"])
	}
	if denuncia["codigo"] != "DN-ABCD1234" {
		t.Fatalf("unexpected codigo %v", denuncia["codigo"])
	}
	if denuncia["estado"] != "EN_REVISION" {
		t.Fatalf("unexpected estado %v", denuncia["estado"])
	}
}

func TestConsultaByPublicID(t *testing.T) {
	complainant := &model.Complainant{ID: uuid.New(), PublicID: "AB12C", Anonymous: true}
	complaints := &fakeComplaintQueries{
		byPublicID: map[string][]model.Complaint{
			"AB12C": {
				{Code: "DN-AAAA1111", Status: model.StatusPendiente},
				{Code: "DN-BBBB2222", Status: model.StatusResuelto},
			},
		},
	}
	complainants := &fakeComplainantQueries{
		byPublicID: map[string]*model.Complainant{"AB12C": complainant},
	}
	router := queryTestRouter(complaints, complainants, &fakeForum{})

	recorder := postJSON(t, router, "/consulta", map[string]string{"codigo": "ab12c"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	denuncias, ok := body["denuncias"].([]interface{})
	if !ok || len(denuncias) != 2 {
		t.Fatalf("expected 2 denuncias, got %v", body["denuncias"])
	}
}

func TestConsultaUnknownCode(t *testing.T) {
	router := queryTestRouter(&fakeComplaintQueries{}, &fakeComplainantQueries{}, &fakeForum{})

	recorder := postJSON(t, router, "/consulta", map[string]string{"codigo": "DN-XXXXXXXX"})
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", recorder.Code)
	}
}

func TestConsultaMissingCode(t *testing.T) {
	router := queryTestRouter(&fakeComplaintQueries{}, &fakeComplainantQueries{}, &fakeForum{})

	recorder := postJSON(t, router, "/consulta", map[string]string{})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
}

func TestConsultaBadFormat(t *testing.T) {
	router := queryTestRouter(&fakeComplaintQueries{}, &fakeComplainantQueries{}, &fakeForum{})

	recorder := postJSON(t, router, "/consulta", map[string]string{"codigo": "nonsense"})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}
}

func TestAutocompleteUserFound(t *testing.T) {
	rut := "12.345.678-5"
	name := "Ana"
	complainants := &fakeComplainantQueries{
		byRUT: map[string]*model.Complainant{
			rut: {ID: uuid.New(), PublicID: "AB12C", RUT: &rut, FirstName: &name},
		},
	}
	router := queryTestRouter(&fakeComplaintQueries{}, complainants, &fakeForum{})

	recorder := postJSON(t, router, "/autocomplete-user", map[string]string{"rut": "12345678-5"})
	body := decodeBody(t, recorder)
	if body["encontrado"] != true {
		t.Fatalf("expected encontrado=true, got %v", body["encontrado"])
	}
	if body["nombre"] != "Ana" {
		t.Fatalf("unexpected nombre %v", body["nombre"])
	}
}

func TestAutocompleteUserUnknownRUT(t *testing.T) {
	router := queryTestRouter(&fakeComplaintQueries{}, &fakeComplainantQueries{}, &fakeForum{})

	recorder := postJSON(t, router, "/autocomplete-user", map[string]string{"rut": "12345678-5"})
	body := decodeBody(t, recorder)
	if body["encontrado"] != false {
		t.Fatalf("expected encontrado=false, got %v", body["encontrado"])
	}
}

func TestPublicMessage(t *testing.T) {
	complaints := &fakeComplaintQueries{
		byCode: map[string]*model.Complaint{"DN-ABCD1234": {Code: "DN-ABCD1234"}},
	}
	forum := &fakeForum{}
	router := queryTestRouter(complaints, &fakeComplainantQueries{}, forum)

	recorder := postJSON(t, router, "/mensaje", map[string]string{
		"codigo":  "DN-ABCD1234",
		"mensaje": "¿Hay novedades de mi caso?",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if len(forum.appended) != 1 {
		t.Fatalf("expected 1 appended message, got %d", len(forum.appended))
	}
	if forum.appended[0].AdminID != nil {
		t.Fatal("complainant message must not carry an admin id")
	}
}

func TestPublicMessageEmptyBody(t *testing.T) {
	router := queryTestRouter(&fakeComplaintQueries{}, &fakeComplainantQueries{}, &fakeForum{})

	recorder := postJSON(t, router, "/mensaje", map[string]string{
		"codigo":  "DN-ABCD1234",
		"mensaje": "   ",
	})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}
}
