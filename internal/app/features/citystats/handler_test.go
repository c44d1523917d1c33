package citystats_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/features/citystats"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/app/store/queries/cityqueries"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/domain/models"
	"github.com/NARESH-ASHOK-MALI/NagarSeva/internal/testutil"
	"go.uber.org/zap"
)

func TestServeCityStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	author := fx.CreateCitizen(ctx, "asha")
	now := time.Now().UTC()
	fx.CreateListing(ctx, author.ID, "Mumbai", now, models.StatusResolved)
	fx.CreateListing(ctx, author.ID, "Pune", now.Add(time.Minute), models.StatusResolved)
	fx.CreateListing(ctx, author.ID, "Pune", now.Add(2*time.Minute), models.StatusInProgress, models.StatusResolved)
	fx.CreateListing(ctx, author.ID, "Delhi", now.Add(3*time.Minute), models.StatusResolved, models.StatusInProgress)
	fx.CreateListing(ctx, author.ID, "", now.Add(4*time.Minute), models.StatusResolved)

	h := citystats.NewHandler(db, zap.NewNop())
	rec := testutil.NewRecorder()
	h.ServeCityStats(rec, testutil.NewRequest("GET", "/api/city-stats"))

	rec.AssertStatus(t, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var got []cityqueries.CityCount
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := []cityqueries.CityCount{
		{City: "Pune", Count: 2},
		{City: "Mumbai", Count: 1},
		{City: cityqueries.UnknownCity, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestServeCityStats_EmptyIsArray(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := citystats.NewHandler(db, zap.NewNop())

	rec := testutil.NewRecorder()
	h.ServeCityStats(rec, testutil.NewRequest("GET", "/api/city-stats"))

	rec.AssertStatus(t, http.StatusOK)
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}
