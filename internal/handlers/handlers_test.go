package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/epeers/fundledger/internal/models"
	"github.com/epeers/fundledger/internal/repository"
	"github.com/gin-gonic/gin"
)

func doRequest(router *gin.Engine, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func uploadCSV(router *gin.Engine, path string, userID int64, content string) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "upload.csv")
	_, _ = part.Write([]byte(content))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-User-ID", strconv.FormatInt(userID, 10))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser, alice)
	st.participants.On("GetByID", mock.Anything, int64(99)).Return(nil, repository.ErrParticipantNotFound)
	st.participants.On("List", mock.Anything).Return([]models.Participant{*alice, *bob}, nil)

	w := doRequest(router, http.MethodGet, "/admin/participants", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(router, http.MethodGet, "/admin/participants", alice.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", decodeError(t, w).Error)

	w = doRequest(router, http.MethodGet, "/admin/participants", 99, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodGet, "/admin/participants", adminUser.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var participants []models.Participant
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &participants))
	assert.Len(t, participants, 2)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLedger_SelfOrAdmin(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser, alice, bob)
	st.currentPeriod(october2025)
	st.calendar.On("ListByPeriod", mock.Anything, october2025).Return([]models.TradingDay{
		{Date: "2025-10-01"},
		{Date: "2025-10-02"},
	}, nil)
	st.returns.On("ListFundReturns", mock.Anything, october2025).Return([]models.FundReturn{
		{ID: 1, Date: "2025-10-01", DollarChange: 100, TotalFundValue: 10000},
	}, nil)
	st.monthly.On("Get", mock.Anything, alice.ID, october2025).Return(nil, repository.ErrMonthlyValueNotFound)
	st.returns.On("ListDailyReturns", mock.Anything, alice.ID, october2025).Return([]models.DailyReturn{}, nil)

	w := doRequest(router, http.MethodGet, "/participants/3/ledger?year=2025&month=10", alice.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, tc := range []struct {
		name   string
		path   string
		userID int64
	}{
		{"me", "/me/ledger?year=2025&month=10", alice.ID},
		{"self by id", "/participants/2/ledger?year=2025&month=10", alice.ID},
		{"admin", "/participants/2/ledger?year=2025&month=10", adminUser.ID},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, tc.path, tc.userID, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var ledger models.Ledger
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ledger))
			assert.Equal(t, alice.ID, ledger.ParticipantID)
			assert.Equal(t, models.PositionFromProfile, ledger.Source)
			require.Len(t, ledger.Rows, 2)
			assert.Equal(t, 1010.0, ledger.Rows[0].Value)
			assert.Nil(t, ledger.Rows[1].PercentageChange)
			assert.Equal(t, 1010.0, ledger.Summary.CurrentValue)
			assert.Equal(t, 1.0, ledger.Summary.PercentChange)
			assert.Empty(t, ledger.Warnings)
		})
	}

	w = doRequest(router, http.MethodGet, "/me/ledger?year=2025", alice.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/me/ledger?year=2025&month=10", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestFundSummary_ReportsWarnings(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser)
	st.currentPeriod(october2025)
	st.participants.On("List", mock.Anything).Return([]models.Participant{*alice}, nil)
	st.calendar.On("ListByPeriod", mock.Anything, october2025).Return([]models.TradingDay{}, nil)
	st.returns.On("ListFundReturns", mock.Anything, october2025).Return([]models.FundReturn{}, nil)
	st.monthly.On("Get", mock.Anything, alice.ID, october2025).Return(nil, repository.ErrMonthlyValueNotFound)
	st.returns.On("ListDailyReturns", mock.Anything, alice.ID, october2025).Return([]models.DailyReturn{}, nil)

	w := doRequest(router, http.MethodGet, "/admin/summary?year=2025&month=10", adminUser.ID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary models.FundSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1000.0, summary.TotalBeginningValue)
	assert.Equal(t, 40.0, summary.OwnershipTotal)
	require.Len(t, summary.Participants, 1)
	assert.Equal(t, "Alice Avery", summary.Participants[0].Name)

	codes := make([]models.WarningCode, 0, len(summary.Warnings))
	for _, warning := range summary.Warnings {
		codes = append(codes, warning.Code)
	}
	assert.Contains(t, codes, models.WarnCalendarFallback)
	assert.Contains(t, codes, models.WarnOwnershipBelowTotal)
}

func TestCreateParticipant(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser)
	st.currentPeriod(october2025)
	st.participants.On("List", mock.Anything).Return([]models.Participant{*alice, *bob}, nil)
	st.monthly.On("ListByPeriod", mock.Anything, october2025).Return([]models.MonthlyValue{}, nil)
	st.participants.On("Create", mock.Anything, mock.AnythingOfType("*models.Participant")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Participant).ID = 4 }).
		Return(nil).Once()

	t.Run("missing beginning value", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/admin/participants", adminUser.ID, gin.H{
			"username": "carol", "first_name": "Carol", "last_name": "Cole",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("over allocated", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/admin/participants", adminUser.ID, gin.H{
			"username": "carol", "first_name": "Carol", "last_name": "Cole",
			"beginning_value": 500, "ownership_percentage": 10,
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "over_allocated", decodeError(t, w).Error)
	})

	t.Run("created", func(t *testing.T) {
		w := doRequest(router, http.MethodPost, "/admin/participants", adminUser.ID, gin.H{
			"username": " carol ", "first_name": "Carol", "last_name": "Cole",
			"beginning_value": 500.005,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var p models.Participant
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Equal(t, int64(4), p.ID)
		assert.Equal(t, "carol", p.Username)
		assert.Equal(t, 500.01, p.BeginningValue)
	})

	st.participants.AssertExpectations(t)
}

func TestFundReturnRoutes(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser)
	st.returns.On("CreateFundReturn", mock.Anything, mock.AnythingOfType("*models.FundReturn")).Return(repository.ErrDuplicateDate)
	st.returns.On("DeleteFundReturn", mock.Anything, int64(7)).Return(repository.ErrReturnNotFound)

	w := doRequest(router, http.MethodPost, "/admin/fund-returns", adminUser.ID, gin.H{
		"date": "2025-10-01", "dollar_change": 10,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/admin/fund-returns", adminUser.ID, gin.H{
		"date": "2025-10-1", "dollar_change": 10, "total_fund_value": 1000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/admin/fund-returns", adminUser.ID, gin.H{
		"date": "2025-10-01", "dollar_change": 10, "total_fund_value": 1000,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doRequest(router, http.MethodDelete, "/admin/fund-returns/7", adminUser.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodDelete, "/admin/fund-returns/abc", adminUser.ID, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportFundReturns(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser)
	st.returns.On("BulkCreateFundReturns", mock.Anything, []models.FundReturn{
		{Date: "2025-10-01", DollarChange: 1000, TotalFundValue: 100000},
		{Date: "2025-10-02", DollarChange: -250.5, TotalFundValue: 101000},
	}).Return(1, 1, nil)

	csvData := "date,dollar_change,total_fund_value\n" +
		"2025-10-01,\"$1,000.00\",100000\n" +
		"2025-10-02,(250.50),\"101,000\"\n"
	w := uploadCSV(router, "/admin/fund-returns/import", adminUser.ID, csvData)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.ImportResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Inserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Empty(t, result.Errors)

	w = uploadCSV(router, "/admin/fund-returns/import", adminUser.ID, "date,amount\n2025-10-01,5\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w).Message, "dollar_change")

	st.returns.AssertExpectations(t)
}

func TestCalendarRoutes(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser)
	november := models.Period{Year: 2025, Month: time.November}
	st.calendar.On("ListByPeriod", mock.Anything, november).Return([]models.TradingDay{}, nil)
	st.calendar.On("Count", mock.Anything).Return(64, nil)

	w := doRequest(router, http.MethodGet, "/calendar?year=2025&month=11", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cal models.CalendarResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cal))
	assert.True(t, cal.Fallback)
	assert.Len(t, cal.Days, 20)

	w = doRequest(router, http.MethodGet, "/calendar?year=2025&month=13", 0, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, "/admin/calendar/init", adminUser.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var initResp models.CalendarInitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &initResp))
	assert.False(t, initResp.Initialized)
	assert.Equal(t, "Calendar already initialized", initResp.Message)
	st.calendar.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)

	w = uploadCSV(router, "/admin/calendar/import", adminUser.ID, "date,is_half_day\n2025-11-28,true\n2025-11-28,false\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDailyReturnRoutes(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser)
	st.participants.On("GetByID", mock.Anything, int64(99)).Return(nil, repository.ErrParticipantNotFound)

	w := doRequest(router, http.MethodPost, "/admin/participants/99/returns", adminUser.ID, gin.H{
		"date": "2025-10-01", "percentage": 1.5,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPost, "/admin/participants/99/returns", adminUser.ID, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateSettings_Validation(t *testing.T) {
	router, st := setupRouter()
	st.knowParticipants(adminUser)
	st.currentPeriod(october2025)

	w := doRequest(router, http.MethodPut, "/admin/settings", adminUser.ID, gin.H{"current_month": 13})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	st.settings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
