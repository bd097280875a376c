package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T, key string) string {
	t.Helper()
	// MinCost keeps the tests fast
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return string(h)
}

func serve(mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, bool) {
	reached := false
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, reached
}

func TestAdminKeyMiddleware_acceptsBearer(t *testing.T) {
	mw := AdminKeyMiddleware(testHash(t, "s3cret"))

	req := httptest.NewRequest("POST", "/export", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rr, reached := serve(mw, req)

	if rr.Code != http.StatusOK || !reached {
		t.Fatalf("expected 200 and handler reached, got %d reached=%t", rr.Code, reached)
	}
}

func TestAdminKeyMiddleware_acceptsQueryToken(t *testing.T) {
	mw := AdminKeyMiddleware(testHash(t, "s3cret"))

	rr, reached := serve(mw, httptest.NewRequest("POST", "/export?token=s3cret", nil))
	if rr.Code != http.StatusOK || !reached {
		t.Fatalf("expected 200 and handler reached, got %d reached=%t", rr.Code, reached)
	}
}

func TestAdminKeyMiddleware_blocksWrongOrMissingKey(t *testing.T) {
	mw := AdminKeyMiddleware(testHash(t, "s3cret"))

	wrong := httptest.NewRequest("POST", "/export", nil)
	wrong.Header.Set("Authorization", "Bearer nope")

	for name, req := range map[string]*http.Request{
		"missing": httptest.NewRequest("POST", "/export", nil),
		"wrong":   wrong,
	} {
		rr, reached := serve(mw, req)
		if rr.Code != http.StatusUnauthorized || reached {
			t.Fatalf("%s: expected 401, got %d reached=%t", name, rr.Code, reached)
		}
	}
}

func TestAdminKeyMiddleware_noHashConfigured(t *testing.T) {
	req := httptest.NewRequest("POST", "/export", nil)
	req.Header.Set("Authorization", "Bearer anything")

	rr, reached := serve(AdminKeyMiddleware(""), req)
	if rr.Code != http.StatusUnauthorized || reached {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestAdminKeyMiddleware_allowsOptions(t *testing.T) {
	rr, reached := serve(AdminKeyMiddleware(""), httptest.NewRequest("OPTIONS", "/export", nil))
	if !reached || rr.Code != http.StatusOK {
		t.Fatalf("expected preflight to pass, got %d", rr.Code)
	}
}

func TestHashKeyRoundTrip(t *testing.T) {
	h, err := HashKey("k")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(h), []byte("k")) != nil {
		t.Fatalf("hash does not verify")
	}
}
