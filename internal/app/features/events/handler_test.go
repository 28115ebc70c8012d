package events_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/dalemusser/congregate/internal/app/features/errors"
	"github.com/dalemusser/congregate/internal/app/features/events"
	"github.com/dalemusser/congregate/internal/domain/models"
	"github.com/dalemusser/congregate/internal/testutil"
	"go.uber.org/zap"
)

type staticEvents struct {
	list []models.Event
	err  error
}

func (s staticEvents) List(context.Context) ([]models.Event, error) { return s.list, s.err }

func serve(t *testing.T, l events.Lister) *testutil.ResponseRecorder {
	t.Helper()
	logger := zap.NewNop()
	rec := testutil.NewRecorder()
	events.Routes(events.NewHandler(l, uierrors.NewErrorLogger(logger), logger)).
		ServeHTTP(rec, testutil.NewRequest("GET", "/"))
	return rec
}

func TestServeList(t *testing.T) {
	rec := serve(t, staticEvents{list: []models.Event{
		{Title: "Christmas Service 2023", Date: time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC), MediaURL: "https://example.com/c.jpg"},
	}})
	rec.AssertStatus(t, http.StatusOK)

	var got []map[string]any
	rec.DecodeJSON(t, &got)
	if len(got) != 1 || got[0]["title"] != "Christmas Service 2023" || got[0]["mediaUrl"] != "https://example.com/c.jpg" {
		t.Errorf("unexpected body %v", got)
	}
}

func TestServeList_Empty(t *testing.T) {
	rec := serve(t, staticEvents{list: []models.Event{}})
	rec.AssertStatus(t, http.StatusOK)
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestServeList_StoreDown(t *testing.T) {
	rec := serve(t, staticEvents{err: errors.New("mongo down")})
	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, "Failed to fetch events.")
}
