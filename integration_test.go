package main_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"argip-api/internal/auth"
	"argip-api/internal/catalog"
	"argip-api/internal/server"
	"argip-api/internal/storage"
)

func SetupServer(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()

	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("failed to create in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close(db) })

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql handle: %v", err)
	}

	log, _ := test.NewNullLogger()
	handler := server.NewRouter(server.Deps{
		Users:   auth.NewService(db, bcrypt.MinCost),
		Tokens:  auth.NewTokenService("integration-secret", 30*time.Minute),
		Catalog: catalog.NewStore(db),
		DB:      sqlDB,
		Logger:  log,
	})
	return handler, db
}

func request(t *testing.T, handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int, step string) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("%s: expected status %d, got %d (%s)", step, want, w.Code, w.Body.String())
	}
}

func TestIntegration_FullFlow(t *testing.T) {
	handler, _ := SetupServer(t)

	w := request(t, handler, http.MethodPost, "/register", `{"username":"alice","email":"a@x.com","password":"pw1"}`, "")
	expectStatus(t, w, http.StatusCreated, "register")

	w = request(t, handler, http.MethodPost, "/register", `{"username":"alice","email":"other@x.com","password":"pw1"}`, "")
	expectStatus(t, w, http.StatusBadRequest, "duplicate register")

	w = request(t, handler, http.MethodPost, "/login", `{"username":"alice","password":"pw1"}`, "")
	expectStatus(t, w, http.StatusOK, "login")
	var loginResp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token := loginResp["access_token"]
	if token == "" || loginResp["token_type"] != "bearer" {
		t.Fatalf("unexpected login response: %v", loginResp)
	}

	w = request(t, handler, http.MethodGet, "/me", "", token)
	expectStatus(t, w, http.StatusOK, "me")
	var me map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&me); err != nil {
		t.Fatalf("failed to decode /me response: %v", err)
	}
	if me["username"] != "alice" {
		t.Fatalf("expected alice from /me, got %v", me["username"])
	}

	w = request(t, handler, http.MethodPost, "/api/ranges", `{"nazwa":"M6","od":6,"do":8}`, "")
	expectStatus(t, w, http.StatusCreated, "create range")
	var rng map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&rng); err != nil {
		t.Fatalf("failed to decode range: %v", err)
	}
	if rng["id"] != float64(1) {
		t.Fatalf("expected range id 1, got %v", rng["id"])
	}

	w = request(t, handler, http.MethodPost, "/api/ranges", `{"od":10,"do":5}`, "")
	expectStatus(t, w, http.StatusBadRequest, "invalid range")

	w = request(t, handler, http.MethodPost, "/api/nuts", `{"id_zakresu":1,"nazwa":"hex","srednica":6,"cena":1.50}`, "")
	expectStatus(t, w, http.StatusCreated, "create nut")
	var nut map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&nut); err != nil {
		t.Fatalf("failed to decode nut: %v", err)
	}
	if nut["cena"] != "1.50" {
		t.Fatalf("expected cena 1.50, got %v", nut["cena"])
	}
	nutPath := fmt.Sprintf("/api/nuts/%d", int(nut["id"].(float64)))

	w = request(t, handler, http.MethodDelete, "/api/ranges/1", "", "")
	expectStatus(t, w, http.StatusNoContent, "delete range")

	w = request(t, handler, http.MethodGet, nutPath, "", "")
	expectStatus(t, w, http.StatusNotFound, "nut after range delete")
}

func TestIntegration_UnauthorizedMe(t *testing.T) {
	handler, _ := SetupServer(t)

	w := request(t, handler, http.MethodGet, "/me", "", "")
	expectStatus(t, w, http.StatusUnauthorized, "me without token")
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Fatalf("expected Bearer challenge, got %q", w.Header().Get("WWW-Authenticate"))
	}
}

func TestIntegration_InvalidLogin(t *testing.T) {
	handler, _ := SetupServer(t)

	w := request(t, handler, http.MethodPost, "/login", `{"username":"nonexistent","password":"pass"}`, "")
	expectStatus(t, w, http.StatusUnauthorized, "login unknown user")
}

func TestIntegration_InvalidRegister(t *testing.T) {
	handler, _ := SetupServer(t)

	w := request(t, handler, http.MethodPost, "/register", `{"username":"","email":"a@x.com","password":"pass"}`, "")
	expectStatus(t, w, http.StatusBadRequest, "register empty username")
}
