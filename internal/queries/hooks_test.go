// Metroline - Metro Ticketing Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/metroline

package queries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/metroline/internal/apiclient"
	"github.com/tomtom215/metroline/internal/backend"
	"github.com/tomtom215/metroline/internal/config"
	"github.com/tomtom215/metroline/internal/models"
	"github.com/tomtom215/metroline/internal/query"
)

// countingServer answers fixed bodies and counts requests per "METHOD path".
type countingServer struct {
	mu     sync.Mutex
	hits   map[string]int
	bodies map[string]string
	delay  time.Duration
}

func (s *countingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + r.URL.Path
	s.mu.Lock()
	s.hits[route]++
	body, ok := s.bodies[route]
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":404,"message":"not found"}`))
		return
	}
	_, _ = w.Write([]byte(body))
}

func (s *countingServer) count(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

func (s *countingServer) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

const stationBody = `{"id":1,"code":"BT","name":"Ben Thanh","latitude":10.77,"longitude":106.7}`

func newTestHooks(t *testing.T, srv *countingServer) *Hooks {
	t.Helper()
	if srv.hits == nil {
		srv.hits = make(map[string]int)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	mk := func(name string, forward bool) *apiclient.Client {
		c, err := apiclient.New(&config.OriginConfig{
			BaseURL:            ts.URL + "/api",
			Timeout:            2 * time.Second,
			ForwardCredentials: forward,
		}, apiclient.Options{Name: name})
		if err != nil {
			t.Fatalf("apiclient.New: %v", err)
		}
		return c
	}
	cache := query.NewClient(query.Config{})
	t.Cleanup(cache.Close)
	return New(cache, backend.New(mk("legacy", true), mk("ts", false)))
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStationsObserversShareRequest(t *testing.T) {
	t.Parallel()

	srv := &countingServer{
		bodies: map[string]string{"GET /api/stations": `{"status":200,"data":[` + stationBody + `]}`},
		delay:  50 * time.Millisecond,
	}
	h := newTestHooks(t, srv)

	var unsubs []func()
	var last *query.Observer[[]models.Station]
	for i := 0; i < 4; i++ {
		last = h.Stations()
		unsubs = append(unsubs, last.Subscribe(nil))
	}
	defer func() {
		for _, u := range unsubs {
			u()
		}
	}()

	waitFor(t, "stations", func() bool { return last.Result().Status == query.StatusSuccess })
	if got := srv.count("GET /api/stations"); got != 1 {
		t.Errorf("GET /api/stations hit %d times, want 1", got)
	}
	if r := last.Result(); len(r.Data) != 1 || r.Data[0].Code != "BT" {
		t.Errorf("data = %+v", r.Data)
	}
}

func TestDependentQueriesWaitForID(t *testing.T) {
	t.Parallel()

	srv := &countingServer{bodies: map[string]string{
		"GET /api/stations/1": `{"status":200,"data":` + stationBody + `}`,
	}}
	h := newTestHooks(t, srv)

	station := h.Station(0)
	unsub := station.Subscribe(nil)
	defer unsub()
	schedules := h.Schedules(models.ScheduleFilter{})
	unsubSched := schedules.Subscribe(nil)
	defer unsubSched()
	fare := h.Fare(models.FareQuery{RouteID: 1, FromStationID: 2})
	unsubFare := fare.Subscribe(nil)
	defer unsubFare()

	time.Sleep(50 * time.Millisecond)
	if n := srv.total(); n != 0 {
		t.Fatalf("disabled observers sent %d requests", n)
	}

	station.SetKey(StationKey(1), func(ctx context.Context) (*models.Station, error) {
		return h.api.GetStation(ctx, 1)
	})
	station.SetEnabled(true)
	waitFor(t, "station", func() bool {
		r := station.Result()
		return r.Status == query.StatusSuccess && r.Data != nil && r.Data.ID == 1
	})
}

func TestCreateStationRefreshesList(t *testing.T) {
	t.Parallel()

	srv := &countingServer{bodies: map[string]string{
		"GET /api/stations":  `{"status":200,"data":[` + stationBody + `]}`,
		"POST /api/stations": `{"status":201,"data":{"id":2,"code":"BS","name":"Ba Son","latitude":10.78,"longitude":106.7}}`,
	}}
	h := newTestHooks(t, srv)

	list := h.Stations()
	unsub := list.Subscribe(nil)
	defer unsub()
	waitFor(t, "initial list", func() bool { return list.Result().Status == query.StatusSuccess })

	created, err := h.CreateStation().Mutate(context.Background(), &models.StationInput{
		Code: "BS", Name: "Ba Son", Latitude: 10.78, Longitude: 106.7,
	})
	if err != nil {
		t.Fatalf("CreateStation: %v", err)
	}
	if created.ID != 2 {
		t.Errorf("created id = %d", created.ID)
	}
	waitFor(t, "list refetch", func() bool { return srv.count("GET /api/stations") == 2 })
}

func TestFailedMutationLeavesCache(t *testing.T) {
	t.Parallel()

	srv := &countingServer{bodies: map[string]string{}}
	h := newTestHooks(t, srv)
	h.Cache().SetData(StationsKey(), []models.Station{{ID: 1}})

	_, err := h.CreateStation().Mutate(context.Background(), &models.StationInput{})
	if !apiclient.IsRequest(err) {
		t.Fatalf("err = %v, want request validation error", err)
	}
	if srv.total() != 0 {
		t.Error("invalid input reached the server")
	}
	if st, _ := h.Cache().GetState(StationsKey()); st.Invalidated {
		t.Error("failed mutation invalidated stations")
	}
}

func TestUpdateProfileSeedsCache(t *testing.T) {
	t.Parallel()

	srv := &countingServer{bodies: map[string]string{
		"PUT /api/users/me": `{"status":200,"data":{"id":4,"email":"an@example.com","fullName":"An Nguyen","role":"ROLE_USER"}}`,
	}}
	h := newTestHooks(t, srv)

	if _, err := h.UpdateProfile().Mutate(context.Background(), &models.UpdateProfileRequest{FullName: "An Nguyen"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	p, ok := query.GetData[*models.Profile](h.Cache(), ProfileKey())
	if !ok || p.FullName != "An Nguyen" {
		t.Errorf("cached profile = %+v, %v", p, ok)
	}
}

type recordingSink struct {
	mu   sync.Mutex
	last *models.Profile
}

func (r *recordingSink) SetProfile(_ context.Context, p *models.Profile) error {
	r.mu.Lock()
	r.last = p
	r.mu.Unlock()
	return nil
}

func TestUpdateProfileSyncsSession(t *testing.T) {
	t.Parallel()

	srv := &countingServer{bodies: map[string]string{
		"PUT /api/users/me": `{"status":200,"data":{"id":4,"email":"an@example.com","fullName":"An Nguyen","role":"ROLE_USER"}}`,
	}}
	sink := &recordingSink{}
	h := newTestHooks(t, srv).SyncProfile(sink)

	if _, err := h.UpdateProfile().Mutate(context.Background(), &models.UpdateProfileRequest{FullName: "An Nguyen"}); err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.last == nil || sink.last.FullName != "An Nguyen" {
		t.Errorf("session profile = %+v", sink.last)
	}
}

func TestKeysNestUnderRoots(t *testing.T) {
	t.Parallel()

	r := models.StatsRange{From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), GroupBy: "DAY"}
	tests := []struct {
		key  query.Key
		root query.Key
	}{
		{StationsKey(), StationsRoot},
		{StationKey(3), StationsRoot},
		{RoutesByStationKey(3), StationsRoot},
		{BusConnectionsKey(3), StationsRoot},
		{StationsByRouteKey(2), RoutesRoot},
		{SchedulesKey(models.ScheduleFilter{StationID: 1}), SchedulesRoot},
		{FareKey(models.FareQuery{RouteID: 1, FromStationID: 2, ToStationID: 3}), FaresRoot},
		{UserTicketsKey(4, ""), TicketsRoot},
		{OrderKey(5), OrdersRoot},
		{ProfileKey(), UsersRoot},
		{StatsKey(StatsRevenue, r), StatsRoot},
	}
	for _, tt := range tests {
		if !tt.key.HasPrefix(tt.root) {
			t.Errorf("%v is not under %v", tt.key, tt.root)
		}
	}
	if got := StatsKey(StatsRevenue, r).String(); got != `["stats","revenue","2026-01-01","","DAY"]` {
		t.Errorf("StatsKey = %s", got)
	}
}
