package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/agriplanner/internal/domain/models"
	"github.com/mamadbah2/agriplanner/internal/repository/mongodb"
	"github.com/mamadbah2/agriplanner/internal/server/middleware"
	"github.com/mamadbah2/agriplanner/internal/service/auth"
	"github.com/mamadbah2/agriplanner/internal/service/calculations"
	"github.com/mamadbah2/agriplanner/internal/service/evaluator"
	"github.com/mamadbah2/agriplanner/internal/service/insights"
	"github.com/mamadbah2/agriplanner/internal/service/profile"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeCalculations struct {
	quote     models.PriceQuote
	savedFor  string
	deleteErr error
	adviseErr error
	shareErr  error
}

func (f *fakeCalculations) Calculate(_ context.Context, input models.HarvestInput) (models.EvaluationResult, error) {
	if input.CropName != f.quote.CropName {
		return models.EvaluationResult{}, fmt.Errorf("%w: %s", evaluator.ErrMissingPriceData, input.CropName)
	}
	return evaluator.Evaluate(input, f.quote), nil
}

func (f *fakeCalculations) Save(_ context.Context, userID string, result models.EvaluationResult) (models.SavedCalculation, error) {
	f.savedFor = userID
	return models.SavedCalculation{ID: "calc-1", UserID: userID, BestOption: result.BestOption.Label}, nil
}

func (f *fakeCalculations) History(_ context.Context, _ string) ([]models.SavedCalculation, error) {
	return []models.SavedCalculation{}, nil
}

func (f *fakeCalculations) Delete(_ context.Context, _, _ string) error { return f.deleteErr }

func (f *fakeCalculations) Advise(_ context.Context, _ models.EvaluationResult) (string, error) {
	return "sell now", f.adviseErr
}

func (f *fakeCalculations) Share(_ context.Context, _, _, _ string) error { return f.shareErr }

type fakeAuth struct{ err error }

func (f fakeAuth) SignUp(_ context.Context, email, _, _ string) (auth.Session, error) {
	return auth.Session{Token: "t", User: models.User{Email: email}}, f.err
}

func (f fakeAuth) SignIn(_ context.Context, email, _ string) (auth.Session, error) {
	return auth.Session{Token: "t", User: models.User{Email: email}}, f.err
}

type fakeProfiles struct{ err error }

func (f fakeProfiles) Get(_ context.Context, userID string) (models.Profile, error) {
	return models.Profile{UserID: userID}, f.err
}

func (f fakeProfiles) Update(_ context.Context, userID, farmName, location string, crops []string) (models.Profile, error) {
	return models.Profile{UserID: userID, FarmName: farmName, Location: location, PreferredCrops: crops}, f.err
}

type fakeAlerts struct{}

func (fakeAlerts) InsertAlert(context.Context, models.WeatherAlert) error { return nil }

func (fakeAlerts) ListActiveAlerts(context.Context, time.Time) ([]models.WeatherAlert, error) {
	return []models.WeatherAlert{}, nil
}

func riceQuote() models.PriceQuote {
	return models.PriceQuote{CropName: "Rice", MarketAPriceToday: 20, MarketAPrice7Days: 21, MarketBPriceToday: 22, MarketBPrice7Days: 19}
}

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func newCalcEngine(svc CalculationService) *gin.Engine {
	h := NewCalculationHandler(svc, nil)
	r := gin.New()
	r.Use(withUser("user-1"))
	r.POST("/evaluate", h.Evaluate)
	r.POST("/advice", h.Advise)
	r.POST("/calculations", h.Create)
	r.DELETE("/calculations/:id", h.Delete)
	r.POST("/calculations/:id/share", h.Share)
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validHarvest() map[string]interface{} {
	return map[string]interface{}{
		"cropName":           "Rice",
		"quantityKg":         100,
		"harvestDate":        "2024-03-15",
		"shelfLifeDays":      30,
		"storageLossPercent": 2,
		"distanceMarketA":    25,
		"distanceMarketB":    40,
		"transportCostPerKm": 5,
	}
}

func TestEvaluate(t *testing.T) {
	r := newCalcEngine(&fakeCalculations{quote: riceQuote()})

	w := doJSON(r, http.MethodPost, "/evaluate", validHarvest())
	require.Equal(t, http.StatusOK, w.Code)

	var resp evaluationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Result.Options, 4)
	assert.Equal(t, "Sell Now → Market B", resp.Result.BestOption.Label)
	assert.Equal(t, "₹2,000", resp.BestNet)
	assert.Equal(t, insights.Disclaimer, resp.Disclaimer)
}

func TestEvaluateMissingPrice(t *testing.T) {
	r := newCalcEngine(&fakeCalculations{quote: riceQuote()})

	body := validHarvest()
	body["cropName"] = "Millet"
	w := doJSON(r, http.MethodPost, "/evaluate", body)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"no price data for this crop"}`, w.Body.String())
}

func TestEvaluateValidation(t *testing.T) {
	r := newCalcEngine(&fakeCalculations{quote: riceQuote()})

	cases := map[string]func(map[string]interface{}){
		"quantity below one":   func(b map[string]interface{}) { b["quantityKg"] = 0.5 },
		"loss above hundred":   func(b map[string]interface{}) { b["storageLossPercent"] = 101 },
		"negative distance":    func(b map[string]interface{}) { b["distanceMarketB"] = -1 },
		"missing cost":         func(b map[string]interface{}) { delete(b, "transportCostPerKm") },
		"zero shelf life":      func(b map[string]interface{}) { b["shelfLifeDays"] = 0 },
		"malformed date":       func(b map[string]interface{}) { b["harvestDate"] = "15/03/2024" },
		"missing crop":         func(b map[string]interface{}) { b["cropName"] = "" },
		"non numeric quantity": func(b map[string]interface{}) { b["quantityKg"] = "lots" },
		"huge quantity":        func(b map[string]interface{}) { b["quantityKg"] = 1e308 },
		"huge distance":        func(b map[string]interface{}) { b["distanceMarketA"] = 1e300 },
		"huge transport cost":  func(b map[string]interface{}) { b["transportCostPerKm"] = 1e300 },
		"huge shelf life":      func(b map[string]interface{}) { b["shelfLifeDays"] = 100000 },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			body := validHarvest()
			mutate(body)
			w := doJSON(r, http.MethodPost, "/evaluate", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestEvaluateLargestQuantityStaysFinite(t *testing.T) {
	r := gin.New()
	r.Use(gin.Recovery(), withUser("user-1"))
	r.POST("/evaluate", NewCalculationHandler(&fakeCalculations{quote: riceQuote()}, nil).Evaluate)

	body := validHarvest()
	body["quantityKg"] = 1e12
	w := doJSON(r, http.MethodPost, "/evaluate", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp evaluationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "₹2,19,99,99,99,99,800", resp.BestNet)

	body["quantityKg"] = 1e308
	w = doJSON(r, http.MethodPost, "/evaluate", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, w.Body.String())
}

func TestEvaluateAcceptsZeroValues(t *testing.T) {
	r := newCalcEngine(&fakeCalculations{quote: riceQuote()})

	body := validHarvest()
	body["storageLossPercent"] = 0
	body["distanceMarketA"] = 0
	body["transportCostPerKm"] = 0
	w := doJSON(r, http.MethodPost, "/evaluate", body)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateSavesForCaller(t *testing.T) {
	svc := &fakeCalculations{quote: riceQuote()}
	r := newCalcEngine(svc)

	w := doJSON(r, http.MethodPost, "/calculations", validHarvest())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "user-1", svc.savedFor)
}

func TestDeleteMapsNotFound(t *testing.T) {
	svc := &fakeCalculations{quote: riceQuote(), deleteErr: fmt.Errorf("delete: %w", mongodb.ErrNotFound)}
	r := newCalcEngine(svc)

	w := doJSON(r, http.MethodDelete, "/calculations/x", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	svc.deleteErr = nil
	w = doJSON(r, http.MethodDelete, "/calculations/x", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOptionalIntegrationsNotConfigured(t *testing.T) {
	svc := &fakeCalculations{quote: riceQuote(), adviseErr: calculations.ErrNotConfigured, shareErr: calculations.ErrNotConfigured}
	r := newCalcEngine(svc)

	w := doJSON(r, http.MethodPost, "/advice", validHarvest())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(r, http.MethodPost, "/calculations/calc-1/share", map[string]string{"phone": "919800000000"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = doJSON(r, http.MethodPost, "/calculations/calc-1/share", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdvise(t *testing.T) {
	r := newCalcEngine(&fakeCalculations{quote: riceQuote()})

	w := doJSON(r, http.MethodPost, "/advice", validHarvest())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"advice":"sell now"`)
}

func TestAuthHandler(t *testing.T) {
	newEngine := func(err error) *gin.Engine {
		h := NewAuthHandler(fakeAuth{err: err}, nil)
		r := gin.New()
		r.POST("/signup", h.SignUp)
		r.POST("/login", h.Login)
		return r
	}

	creds := map[string]string{"email": "a@b.co", "password": "secret1"}

	assert.Equal(t, http.StatusCreated, doJSON(newEngine(nil), http.MethodPost, "/signup", creds).Code)
	assert.Equal(t, http.StatusOK, doJSON(newEngine(nil), http.MethodPost, "/login", creds).Code)

	w := doJSON(newEngine(auth.ErrEmailTaken), http.MethodPost, "/signup", creds)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Please login instead.")

	w = doJSON(newEngine(auth.ErrInvalidCredentials), http.MethodPost, "/login", creds)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password"}`, w.Body.String())

	w = doJSON(newEngine(nil), http.MethodPost, "/signup", map[string]string{"email": "nope", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(newEngine(nil), http.MethodPost, "/signup", map[string]string{"email": "a@b.co", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileHandler(t *testing.T) {
	newEngine := func(err error) *gin.Engine {
		h := NewProfileHandler(fakeProfiles{err: err}, nil)
		r := gin.New()
		r.Use(withUser("user-1"))
		r.GET("/profile", h.Get)
		r.PUT("/profile", h.Update)
		return r
	}

	w := doJSON(newEngine(nil), http.MethodPut, "/profile", map[string]interface{}{"farm_name": "Green Acres", "preferred_crops": []string{"Rice"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"farm_name":"Green Acres"`)

	w = doJSON(newEngine(fmt.Errorf("%w: Coffee", profile.ErrUnknownCrop)), http.MethodPut, "/profile", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(newEngine(mongodb.ErrNotFound), http.MethodGet, "/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInfoHandler(t *testing.T) {
	h := NewInfoHandler(insights.NewService(fakeAlerts{}, nil), nil)
	r := gin.New()
	r.GET("/checklist", h.Checklist)
	r.GET("/risks", h.Risks)
	r.GET("/alerts", h.Alerts)
	r.POST("/alerts", h.CreateAlert)

	w := doJSON(r, http.MethodGet, "/checklist?checked=1,2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"progress":25`)

	w = doJSON(r, http.MethodGet, "/checklist?checked=a", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/risks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Price Volatility")

	w = doJSON(r, http.MethodGet, "/alerts", nil)
	assert.JSONEq(t, `{"alerts":[]}`, w.Body.String())

	w = doJSON(r, http.MethodPost, "/alerts", map[string]string{"title": "Heavy rain", "severity": "high"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/alerts", map[string]string{"title": "Heavy rain", "severity": "extreme"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
