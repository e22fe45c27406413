package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/wingmate/wingmate/internal/adapters/http/api"
	"github.com/wingmate/wingmate/internal/adapters/repository"
	"github.com/wingmate/wingmate/internal/domain/heatmap"
	"github.com/wingmate/wingmate/internal/domain/model"
	"github.com/wingmate/wingmate/internal/domain/starters"
	"github.com/wingmate/wingmate/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const testSecret = "test-secret"

// fakeDeps satisfies api.Dependencies with scripted behavior.
type fakeDeps struct {
	seen map[string]bool

	profiles   map[string]model.Profile
	recorded   []model.Event
	recordErr  error
	heatDays   []heatmap.Day
	batch      model.InsightBatch
	batchErr   error
	lastForce  bool
	debriefMsg string
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{
		seen:     make(map[string]bool),
		profiles: make(map[string]model.Profile),
	}
}

func (f *fakeDeps) SeenAndRecord(_ context.Context, id string) bool {
	if f.seen[id] {
		return true
	}
	f.seen[id] = true
	return false
}

func (f *fakeDeps) Unrecord(_ context.Context, id string) {
	delete(f.seen, id)
}

func (f *fakeDeps) CreateProfile(_ context.Context, userID string) (model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		p = model.NewProfile(userID, time.Now())
		f.profiles[userID] = p
	}
	return p, nil
}

func (f *fakeDeps) Profile(_ context.Context, userID string) (model.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeDeps) RecordEvent(_ context.Context, e model.Event) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, e)
	return nil
}

func (f *fakeDeps) ActivityHeatmap(context.Context, string) []heatmap.Day {
	return f.heatDays
}

func (f *fakeDeps) EnsureWeeklyInsights(_ context.Context, _ string, force bool) (model.InsightBatch, error) {
	f.lastForce = force
	if f.batchErr != nil {
		return model.InsightBatch{}, f.batchErr
	}
	return f.batch, nil
}

func (f *fakeDeps) Starters(category string) (map[starters.Category][]string, error) {
	if category == "" {
		return starters.All(), nil
	}
	lines, err := starters.ForCategory(starters.Category(category))
	if err != nil {
		return nil, err
	}
	return map[starters.Category][]string{starters.Category(category): lines}, nil
}

func (f *fakeDeps) RandomStarter(category string) (string, error) {
	return starters.Random(starters.Category(category))
}

func (f *fakeDeps) Debrief(context.Context, string, model.Outcome, string) (string, error) {
	return f.debriefMsg, nil
}

func (f *fakeDeps) GetStats() map[string]interface{} {
	return map[string]interface{}{"ok": true}
}

func newTestMux(deps *fakeDeps) *http.ServeMux {
	mux := http.NewServeMux()
	server := api.NewServer(deps, deps)
	server.Register(context.Background(), mux, api.NewAuthenticator(testSecret))
	return mux
}

func signedToken(t *testing.T, subject, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doJSON(mux *http.ServeMux, method, target, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	Convey("Given a registered API", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)

		Convey("When calling a protected route without a token", func() {
			rec := doJSON(mux, http.MethodGet, "/progress", "", nil)

			Convey("Then it rejects with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When calling with a token signed by the wrong key", func() {
			token := signedToken(t, "u1", "wrong-secret")
			rec := doJSON(mux, http.MethodGet, "/progress", token, nil)

			Convey("Then it rejects with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When calling with a token that has no subject", func() {
			token := signedToken(t, "", testSecret)
			rec := doJSON(mux, http.MethodGet, "/progress", token, nil)

			Convey("Then it rejects with 401", func() {
				So(rec.Code, ShouldEqual, http.StatusUnauthorized)
			})
		})

		Convey("When calling the health route without a token", func() {
			rec := doJSON(mux, http.MethodGet, "/healthz", "", nil)

			Convey("Then it answers", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestPostEvent(t *testing.T) {
	Convey("Given an authenticated user", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)
		token := signedToken(t, "u1", testSecret)

		Convey("When posting a valid approach event", func() {
			rec := doJSON(mux, http.MethodPost, "/events", token, map[string]any{
				"submission_id": "sub-1",
				"kind":          "approach",
				"outcome":       "got_number",
			})

			Convey("Then it records against the token subject", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.recorded, ShouldHaveLength, 1)
				So(deps.recorded[0].UserID, ShouldEqual, "u1")
				So(deps.recorded[0].Outcome, ShouldEqual, model.OutcomeGotNumber)
			})

			Convey("And posting the same submission again is a duplicate ack", func() {
				rec2 := doJSON(mux, http.MethodPost, "/events", token, map[string]any{
					"submission_id": "sub-1",
					"kind":          "approach",
					"outcome":       "got_number",
				})
				So(rec2.Code, ShouldEqual, http.StatusOK)
				var ack map[string]any
				So(json.Unmarshal(rec2.Body.Bytes(), &ack), ShouldBeNil)
				So(ack["duplicate"], ShouldEqual, true)
				So(deps.recorded, ShouldHaveLength, 1)
			})
		})

		Convey("When posting an unknown outcome", func() {
			rec := doJSON(mux, http.MethodPost, "/events", token, map[string]any{
				"submission_id": "sub-2",
				"kind":          "approach",
				"outcome":       "ghosted",
			})

			Convey("Then it rejects with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the store write fails", func() {
			deps.recordErr = errors.New("connection refused")
			rec := doJSON(mux, http.MethodPost, "/events", token, map[string]any{
				"submission_id": "sub-3",
				"kind":          "timer",
				"outcome":       "timer_completed",
			})

			Convey("Then it fails and the submission id is released for retry", func() {
				So(rec.Code, ShouldEqual, http.StatusInternalServerError)
				So(deps.seen["sub-3"], ShouldBeFalse)
			})
		})
	})
}

func TestGetProgress(t *testing.T) {
	Convey("Given an authenticated user with a profile", t, func() {
		deps := newFakeDeps()
		last := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
		deps.profiles["u1"] = model.Profile{
			UserID:           "u1",
			TotalApproaches:  7,
			PastSuccesses:    3,
			CurrentStreak:    4,
			SuccessRate:      42.857142857142854,
			LastApproachDate: &last,
		}
		mux := newTestMux(deps)
		token := signedToken(t, "u1", testSecret)

		Convey("When reading progress", func() {
			rec := doJSON(mux, http.MethodGet, "/progress", token, nil)

			Convey("Then the aggregate returns", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got map[string]any
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got["total_approaches"], ShouldEqual, 7)
				So(got["current_streak"], ShouldEqual, 4)
				So(got["last_approach_date"], ShouldEqual, "2026-03-09")
			})
		})

		Convey("When reading progress for a user without a profile", func() {
			other := signedToken(t, "ghost", testSecret)
			rec := doJSON(mux, http.MethodGet, "/progress", other, nil)

			Convey("Then it answers 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestGetHeatmap(t *testing.T) {
	Convey("Given an authenticated user", t, func() {
		deps := newFakeDeps()
		deps.heatDays = []heatmap.Day{
			{Date: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), DayName: "Wednesday"},
			{Date: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), Count: 2, DayName: "Thursday"},
		}
		mux := newTestMux(deps)
		token := signedToken(t, "u1", testSecret)

		Convey("When reading the heatmap", func() {
			rec := doJSON(mux, http.MethodGet, "/progress/heatmap", token, nil)

			Convey("Then the buckets return wrapped in days", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got struct {
					Days []heatmap.Day `json:"days"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Days, ShouldHaveLength, 2)
				So(got.Days[1].Count, ShouldEqual, 2)
			})
		})
	})
}

func TestGetInsights(t *testing.T) {
	Convey("Given an authenticated user", t, func() {
		deps := newFakeDeps()
		deps.batch = model.InsightBatch{
			Insights:  []string{"one", "two"},
			Challenge: "a challenge",
		}
		mux := newTestMux(deps)
		token := signedToken(t, "u1", testSecret)

		Convey("When reading insights", func() {
			rec := doJSON(mux, http.MethodGet, "/insights", token, nil)

			Convey("Then the batch returns without forcing", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastForce, ShouldBeFalse)
				var got model.InsightBatch
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Insights, ShouldResemble, []string{"one", "two"})
				So(got.Challenge, ShouldEqual, "a challenge")
			})
		})

		Convey("When requesting a refresh", func() {
			rec := doJSON(mux, http.MethodGet, "/insights?refresh=1", token, nil)

			Convey("Then the gate is bypassed", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(deps.lastForce, ShouldBeTrue)
			})
		})

		Convey("When the user has no profile", func() {
			deps.batchErr = repository.ErrNotFound
			rec := doJSON(mux, http.MethodGet, "/insights", token, nil)

			Convey("Then it answers 404", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestGetStarters(t *testing.T) {
	Convey("Given an authenticated user", t, func() {
		deps := newFakeDeps()
		mux := newTestMux(deps)
		token := signedToken(t, "u1", testSecret)

		Convey("When listing the whole library", func() {
			rec := doJSON(mux, http.MethodGet, "/starters", token, nil)

			Convey("Then every category is present", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got map[string][]string
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got, ShouldHaveLength, 4)
			})
		})

		Convey("When asking for an unknown category", func() {
			rec := doJSON(mux, http.MethodGet, "/starters?category=bold", token, nil)

			Convey("Then it rejects with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When drawing a random opener", func() {
			rec := doJSON(mux, http.MethodGet, "/starters/random?category=playful", token, nil)

			Convey("Then one line from the category returns", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got struct {
					Category string `json:"category"`
					Line     string `json:"line"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Category, ShouldEqual, "playful")
				lines, err := starters.ForCategory(starters.CategoryPlayful)
				So(err, ShouldBeNil)
				So(lines, ShouldContain, got.Line)
			})
		})
	})
}

func TestPostDebrief(t *testing.T) {
	Convey("Given an authenticated user", t, func() {
		deps := newFakeDeps()
		deps.debriefMsg = "Solid approach, keep going."
		mux := newTestMux(deps)
		token := signedToken(t, "u1", testSecret)

		Convey("When requesting a debrief", func() {
			rec := doJSON(mux, http.MethodPost, "/coach/debrief", token, map[string]any{
				"outcome": "friendly",
				"note":    "we talked about travel",
			})

			Convey("Then the coach message returns", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				var got struct {
					Message string `json:"message"`
				}
				So(json.Unmarshal(rec.Body.Bytes(), &got), ShouldBeNil)
				So(got.Message, ShouldEqual, "Solid approach, keep going.")
			})
		})

		Convey("When sending an unknown outcome", func() {
			rec := doJSON(mux, http.MethodPost, "/coach/debrief", token, map[string]any{
				"outcome": "married",
			})

			Convey("Then it rejects with 400", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}
