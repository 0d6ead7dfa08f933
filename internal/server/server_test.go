package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cccteam/ccc"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/errors/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/maskedmails/server/internal/sessioninfo"
	"github.com/maskedmails/server/internal/storage"
	"github.com/maskedmails/server/mock/mock_server"
	gomock "go.uber.org/mock/gomock"
)

var (
	testUserID   = ccc.Must(ccc.UUIDFromString("de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5"))
	testDomainID = ccc.Must(ccc.UUIDFromString("0b54c9b7-7c77-4bbc-98ae-2f1a8d8e2f01"))
	testAddrID   = ccc.Must(ccc.UUIDFromString("8f2b9e13-9ad1-4b3f-b6a5-3c1f3c2b1a01"))
)

func newTestApp(t *testing.T) (*App, *mock_server.MockStore) {
	t.Helper()

	store := mock_server.NewMockStore(gomock.NewController(t))

	return &App{store: store, ingestToken: "test-ingest-token"}, store
}

// authedRequest builds a request carrying a validated session, the way the
// session middleware would hand it to the API handlers.
func authedRequest(method, target string, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, http.NoBody)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	ctx := sessioninfo.NewCtx(r.Context(), &sessioninfo.Info{
		SessionID: ccc.Must(ccc.NewUUID()),
		User:      &storage.User{ID: testUserID, Email: "user@example.com"},
	})

	return r.WithContext(ctx)
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestApp_listAddresses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		prepare        func(store *mock_server.MockStore)
		wantStatusCode int
		wantBody       string
	}{
		{
			name: "returns the user's addresses",
			prepare: func(store *mock_server.MockStore) {
				store.EXPECT().UserAddresses(gomock.Any(), testUserID).Return([]storage.Address{
					{ID: testAddrID, Address: "k3j2h1g0f9", Enabled: true, DomainID: testDomainID, UserID: testUserID},
				}, nil).Times(1)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "returns an empty list rather than null",
			prepare: func(store *mock_server.MockStore) {
				store.EXPECT().UserAddresses(gomock.Any(), testUserID).Return(nil, nil).Times(1)
			},
			wantStatusCode: http.StatusOK,
			wantBody:       "[]",
		},
		{
			name: "storage failure",
			prepare: func(store *mock_server.MockStore) {
				store.EXPECT().UserAddresses(gomock.Any(), testUserID).Return(nil, errors.New("query failed")).Times(1)
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, store := newTestApp(t)
			if tt.prepare != nil {
				tt.prepare(store)
			}

			rr := httptest.NewRecorder()
			a.handle(a.listAddresses).ServeHTTP(rr, authedRequest(http.MethodGet, "/api/v1/addresses", ""))

			if got := rr.Code; got != tt.wantStatusCode {
				t.Errorf("response.Code = %v, want %v", got, tt.wantStatusCode)
			}
			if tt.wantBody != "" && strings.TrimSpace(rr.Body.String()) != tt.wantBody {
				t.Errorf("response.Body = %v, want %v", rr.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestApp_createAddress(t *testing.T) {
	t.Parallel()

	description := "shopping"

	tests := []struct {
		name           string
		body           string
		prepare        func(store *mock_server.MockStore)
		wantStatusCode int
	}{
		{
			name: "creates an address in an enabled domain",
			body: fmt.Sprintf(`{"domainId":%q,"description":"shopping"}`, testDomainID),
			prepare: func(store *mock_server.MockStore) {
				store.EXPECT().Domain(gomock.Any(), testDomainID).Return(&storage.Domain{ID: testDomainID, Name: "masked.example", Enabled: true}, nil).Times(1)
				store.EXPECT().CreateAddress(gomock.Any(), &storage.InsertAddress{Description: &description, DomainID: testDomainID, UserID: testUserID}).
					Return(&storage.Address{ID: testAddrID, Address: "k3j2h1g0f9", Description: &description, Enabled: true, DomainID: testDomainID, UserID: testUserID}, nil).Times(1)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "rejects a disabled domain",
			body: fmt.Sprintf(`{"domainId":%q}`, testDomainID),
			prepare: func(store *mock_server.MockStore) {
				store.EXPECT().Domain(gomock.Any(), testDomainID).Return(&storage.Domain{ID: testDomainID, Name: "masked.example", Enabled: false}, nil).Times(1)
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "rejects a malformed body",
			body:           `{not json`,
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, store := newTestApp(t)
			if tt.prepare != nil {
				tt.prepare(store)
			}

			rr := httptest.NewRecorder()
			a.handle(a.createAddress).ServeHTTP(rr, authedRequest(http.MethodPost, "/api/v1/addresses", tt.body))

			if got := rr.Code; got != tt.wantStatusCode {
				t.Errorf("response.Code = %v, want %v", got, tt.wantStatusCode)
			}
		})
	}
}

func TestApp_deleteAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		id             string
		prepare        func(store *mock_server.MockStore)
		wantStatusCode int
	}{
		{
			name: "deletes the caller's address",
			id:   testAddrID.String(),
			prepare: func(store *mock_server.MockStore) {
				store.EXPECT().DeleteUserAddress(gomock.Any(), testUserID, testAddrID).
					Return(&storage.Address{ID: testAddrID, Address: "k3j2h1g0f9", DomainID: testDomainID, UserID: testUserID}, nil).Times(1)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "rejects a malformed id",
			id:             "not-a-uuid",
			wantStatusCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, store := newTestApp(t)
			if tt.prepare != nil {
				tt.prepare(store)
			}

			r := withURLParam(authedRequest(http.MethodDelete, "/api/v1/addresses/"+tt.id, ""), "id", tt.id)
			rr := httptest.NewRecorder()
			a.handle(a.deleteAddress).ServeHTTP(rr, r)

			if got := rr.Code; got != tt.wantStatusCode {
				t.Errorf("response.Code = %v, want %v", got, tt.wantStatusCode)
			}
		})
	}
}

func TestApp_listDomains(t *testing.T) {
	t.Parallel()

	a, store := newTestApp(t)
	want := []storage.Domain{
		{ID: testDomainID, Name: "masked.example", Enabled: true},
	}
	store.EXPECT().Domains(gomock.Any()).Return(want, nil).Times(1)

	rr := httptest.NewRecorder()
	a.handle(a.listDomains).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/domains", http.NoBody))

	if got := rr.Code; got != http.StatusOK {
		t.Fatalf("response.Code = %v, want %v", got, http.StatusOK)
	}

	var got []storage.Domain
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("json.Unmarshal() error=%v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listDomains() mismatch (-want +got):\n%s", diff)
	}
}

func TestApp_ingestMail(t *testing.T) {
	t.Parallel()

	rawMail := base64.StdEncoding.EncodeToString([]byte(
		"From: someone@outside.example\r\n" +
			"To: k3j2h1g0f9@masked.example\r\n" +
			"Subject: hello\r\n" +
			"\r\n" +
			"body\r\n"))

	tests := []struct {
		name           string
		authorization  string
		body           string
		wantStatusCode int
		wantAccepted   int
		wantRejected   int
	}{
		{
			name:           "accepts a parseable mail",
			authorization:  "Token test-ingest-token",
			body:           fmt.Sprintf(`{"mails":[{"raw":%q,"raw_size":64,"metadata":{"queue_id":"4cdrjvFVmKz9rxFn"}}]}`, rawMail),
			wantStatusCode: http.StatusOK,
			wantAccepted:   1,
		},
		{
			name:           "skips an unparseable mail without failing the batch",
			authorization:  "Token test-ingest-token",
			body:           fmt.Sprintf(`{"mails":[{"raw":"!!!not-base64!!!"},{"raw":%q}]}`, rawMail),
			wantStatusCode: http.StatusOK,
			wantAccepted:   1,
			wantRejected:   1,
		},
		{
			name:           "rejects a missing token",
			body:           `{"mails":[]}`,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "rejects a wrong token",
			authorization:  "Token wrong",
			body:           `{"mails":[]}`,
			wantStatusCode: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			a, _ := newTestApp(t)

			r := httptest.NewRequest(http.MethodPost, "/api/v1/ingestion", strings.NewReader(tt.body))
			if tt.authorization != "" {
				r.Header.Set("Authorization", tt.authorization)
			}
			rr := httptest.NewRecorder()

			a.handle(a.ingestMail).ServeHTTP(rr, r)

			if got := rr.Code; got != tt.wantStatusCode {
				t.Fatalf("response.Code = %v, want %v", got, tt.wantStatusCode)
			}
			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var got struct {
				Accepted int `json:"accepted"`
				Rejected int `json:"rejected"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
				t.Fatalf("json.Unmarshal() error=%v", err)
			}
			if got.Accepted != tt.wantAccepted {
				t.Errorf("accepted = %v, want %v", got.Accepted, tt.wantAccepted)
			}
			if got.Rejected != tt.wantRejected {
				t.Errorf("rejected = %v, want %v", got.Rejected, tt.wantRejected)
			}
		})
	}
}
