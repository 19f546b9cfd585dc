package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/gamehub/station-server-go/internal/middleware"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/service"
)

const (
	testPlayerID  = "11111111-1111-1111-1111-111111111111"
	testStationID = "22222222-2222-2222-2222-222222222222"
	testSessionID = "33333333-3333-3333-3333-333333333333"
	testRateID    = "44444444-4444-4444-4444-444444444444"
	testStaffID   = "55555555-5555-5555-5555-555555555555"
)

var (
	adminActor  = model.Actor{UserID: "66666666-6666-6666-6666-666666666666", Role: model.RoleAdmin}
	staffActor  = model.Actor{UserID: testStaffID, Role: model.RoleStaff}
	playerActor = model.Actor{UserID: testPlayerID, Role: model.RolePlayer}
)

// serve runs one request through h with actor, when set, already authenticated.
func serve(h http.Handler, method, path, body string, actor *model.Actor) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type mockStationService struct{ mock.Mock }

func (m *mockStationService) List(ctx context.Context) ([]model.StationView, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.StationView), args.Error(1)
}

func (m *mockStationService) Get(ctx context.Context, id string) (*model.StationView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StationView), args.Error(1)
}

func (m *mockStationService) Create(ctx context.Context, params model.CreateStationParams) (*model.Station, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Station), args.Error(1)
}

func (m *mockStationService) Update(ctx context.Context, id string, patch model.StationPatch) (*model.Station, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Station), args.Error(1)
}

func (m *mockStationService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockSessionService struct{ mock.Mock }

func (m *mockSessionService) Open(ctx context.Context, playerID, stationID string) (*model.Session, error) {
	args := m.Called(ctx, playerID, stationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionService) Close(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionService) Get(ctx context.Context, actor model.Actor, id string) (*model.Session, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *mockSessionService) List(ctx context.Context, actor model.Actor, filter model.SessionFilter) ([]model.Session, error) {
	args := m.Called(ctx, actor, filter)
	return args.Get(0).([]model.Session), args.Error(1)
}

type mockRateService struct{ mock.Mock }

func (m *mockRateService) CurrentRates(ctx context.Context) (map[model.RateCategory]decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[model.RateCategory]decimal.Decimal), args.Error(1)
}

func (m *mockRateService) List(ctx context.Context, category *model.RateCategory) ([]model.RateSetting, error) {
	args := m.Called(ctx, category)
	return args.Get(0).([]model.RateSetting), args.Error(1)
}

func (m *mockRateService) Get(ctx context.Context, id string) (*model.RateSetting, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RateSetting), args.Error(1)
}

func (m *mockRateService) Create(ctx context.Context, actor model.Actor, input model.RateInput) (*model.RateSetting, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RateSetting), args.Error(1)
}

func (m *mockRateService) Update(ctx context.Context, id string, input model.RateInput) (*model.RateSetting, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RateSetting), args.Error(1)
}

func (m *mockRateService) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockReportService struct{ mock.Mock }

func (m *mockReportService) Revenue(ctx context.Context, startDate, endDate string) (*model.RevenueReport, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RevenueReport), args.Error(1)
}

func (m *mockReportService) Usage(ctx context.Context, startDate, endDate string) (*model.UsageReport, error) {
	args := m.Called(ctx, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UsageReport), args.Error(1)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Login(ctx context.Context, username, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

func (m *mockUserService) Register(ctx context.Context, input service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) List(ctx context.Context, limit, offset int) ([]model.User, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]model.User), args.Int(1), args.Error(2)
}

func (m *mockUserService) Get(ctx context.Context, actor model.Actor, id string) (*model.User, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) Update(ctx context.Context, actor model.Actor, id string, patch model.UserPatch) (*model.User, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserService) Delete(ctx context.Context, actor model.Actor, id string) error {
	return m.Called(ctx, actor, id).Error(0)
}
