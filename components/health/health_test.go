package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/waitlist/internal/component"
)

func newComp(t *testing.T) (*Comp, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	c := &Comp{}
	if err := c.Init(component.Env{DB: sqlx.NewDb(raw, "sqlmock")}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return c, mock
}

func get(c *Comp, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	c, _ := newComp(t)
	rec := get(c, "/live")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestReady(t *testing.T) {
	c, mock := newComp(t)
	mock.ExpectPing()

	rec := get(c, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReady_PingFails(t *testing.T) {
	c, mock := newComp(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	rec := get(c, "/")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "refused") {
		t.Fatal("ping error leaked to client")
	}
}

func TestInit_RequiresDB(t *testing.T) {
	if err := (&Comp{}).Init(component.Env{}); err == nil {
		t.Fatal("expected error without a database")
	}
}
