package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	accessapp "github.com/hostly/ordercore/internal/application/access"
	menuapp "github.com/hostly/ordercore/internal/application/menu"
	orderapp "github.com/hostly/ordercore/internal/application/order"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/menu"
	"github.com/hostly/ordercore/internal/infrastructure/auth"
	"github.com/hostly/ordercore/internal/infrastructure/config"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"github.com/hostly/ordercore/internal/infrastructure/notify"
	"github.com/hostly/ordercore/internal/infrastructure/persistence"
	"github.com/hostly/ordercore/internal/infrastructure/persistence/models"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
	"github.com/hostly/ordercore/internal/interfaces/http/handler"
	"github.com/hostly/ordercore/internal/interfaces/http/middleware"
	"github.com/hostly/ordercore/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var validatorOnce sync.Once

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	admin   = access.Principal{UserID: "admin-1", Role: access.RoleAdmin}
	staff   = access.Principal{UserID: "staff-1", Role: access.RoleStaff}
	partner = access.Principal{UserID: "partner-1", Role: access.RolePartner, TenantID: "tenant-1"}
	rival   = access.Principal{UserID: "partner-2", Role: access.RolePartner, TenantID: "tenant-2"}
)

type testAPI struct {
	engine      *gin.Engine
	jwt         *auth.JWTService
	bus         *notify.Bus
	hub         *notify.Hub
	dishes      *persistence.GormDishRepository
	houseDish   *menu.Dish
	partnerDish *menu.Dish
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	validatorOnce.Do(func() { require.NoError(t, middleware.SetupValidator()) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	log := zap.NewNop()
	matrix := access.NewDefaultMatrix()
	bus := notify.NewBus(log)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = bus.Close(ctx)
	})
	hub := notify.NewHub(bus, 32, log)

	dishRepo := persistence.NewGormDishRepository(db)
	store := persistence.NewGormOrderStore(db, nil)
	permissions := accessapp.NewService(matrix, persistence.NewGormOverrideRepository(db))
	jwtSvc := auth.NewJWTService(config.JWTConfig{
		Secret:     "handler-test-secret-of-32-chars!",
		Issuer:     "ordercore-test",
		Expiration: time.Hour,
	})
	revocations := auth.NewMemoryRevocationList()

	engine := gin.New()
	engine.Use(logger.GinMiddleware(log), logger.Recovery(log))
	router.Mount(engine, router.Handlers{
		Orders:      handler.NewOrderHandler(orderapp.NewService(store, dishRepo, matrix, bus, log)),
		Menu:        handler.NewMenuHandler(menuapp.NewService(dishRepo, matrix)),
		Permissions: handler.NewPermissionHandler(permissions),
		Events:      handler.NewEventsHandler(hub, time.Minute),
		Auth:        handler.NewAuthHandler(revocations),
		Health:      handler.NewHealthHandler(sqlDB, "test-instance"),
	}, middleware.Authenticate(middleware.AuthConfig{
		JWTService:  jwtSvc,
		Overrides:   permissions,
		Revocations: revocations,
	}), matrix)

	api := &testAPI{engine: engine, jwt: jwtSvc, bus: bus, hub: hub, dishes: dishRepo}
	tenant := "tenant-1"
	api.houseDish = api.seedDish(t, nil, "Club Sandwich", "12.50")
	api.partnerDish = api.seedDish(t, &tenant, "Poke Bowl", "8")
	return api
}

func (a *testAPI) seedDish(t *testing.T, tenantID *string, name, price string) *menu.Dish {
	t.Helper()
	d, err := menu.NewDish(tenantID, name, "", "mains", decimal.RequireFromString(price))
	require.NoError(t, err)
	require.NoError(t, a.dishes.Save(context.Background(), d))
	return d
}

func (a *testAPI) token(t *testing.T, p access.Principal) string {
	t.Helper()
	issued, err := a.jwt.Generate(p)
	require.NoError(t, err)
	return issued.AccessToken
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any, headers ...string) (int, apiResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w.Code, resp
}

func decodeData[T any](t *testing.T, resp apiResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	return out
}

// placeOrder creates an order through the public endpoint
func (a *testAPI) placeOrder(t *testing.T, payment string, dishes ...*menu.Dish) dto.OrderResponse {
	t.Helper()
	items := make([]dto.OrderItemRequest, 0, len(dishes))
	for _, d := range dishes {
		items = append(items, dto.OrderItemRequest{DishID: d.ID.String(), Quantity: 1})
	}
	status, resp := a.do(t, http.MethodPost, "/api/v1/public/orders", "", dto.CreateOrderRequest{
		LocationID:    "room-101",
		PaymentMethod: payment,
		Items:         items,
	})
	require.Equal(t, http.StatusCreated, status, resp.Error)
	return decodeData[dto.OrderResponse](t, resp)
}

func newUUID() string { return uuid.NewString() }
