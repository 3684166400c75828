package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/middleware"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/api/response"
	apperrors "github.com/welldanyogia/webrana-voicemail-backend/internal/errors"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/mocks"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/services"
	"github.com/welldanyogia/webrana-voicemail-backend/internal/validator"
)

const (
	testAccountID   = "3c1d2e4f-5a6b-4c7d-8e9f-0a1b2c3d4e5f"
	testVoicemailID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

// VoicemailHandlerTestSuite is the test suite for VoicemailHandler
type VoicemailHandlerTestSuite struct {
	suite.Suite
	echo        *echo.Echo
	handler     *VoicemailHandler
	mockService *mocks.MockVoicemailService
}

// SetupTest runs before each test
func (s *VoicemailHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.mockService = new(mocks.MockVoicemailService)
	s.handler = NewVoicemailHandler(s.mockService)
}

// TearDownTest runs after each test
func (s *VoicemailHandlerTestSuite) TearDownTest() {
	s.mockService.AssertExpectations(s.T())
}

// TestVoicemailHandlerTestSuite runs the test suite
func TestVoicemailHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(VoicemailHandlerTestSuite))
}

// Helper function to create a test context bound to the test account
func (s *VoicemailHandlerTestSuite) createContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	middleware.SetAccountID(c, testAccountID)
	return c, rec
}

func (s *VoicemailHandlerTestSuite) decodeList(rec *httptest.ResponseRecorder) []VoicemailResponse {
	var resp struct {
		Success bool                `json:"success"`
		Data    []VoicemailResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Success)
	return resp.Data
}

func (s *VoicemailHandlerTestSuite) decodeError(rec *httptest.ResponseRecorder) response.ErrorResponse {
	var resp response.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.False(resp.Success)
	return resp
}

const validBody = `{
	"from_name": "Alice",
	"to_name": "Bob",
	"phone_number": "555-123-4567",
	"message_content": "Please call back",
	"date_time": "2024-03-01T09:30",
	"taken_by": "Carol"
}`

// ==================== List Tests ====================

// TestList_ReturnsActiveWithPhoneDisplay tests listing formats phone numbers for display
func (s *VoicemailHandlerTestSuite) TestList_ReturnsActiveWithPhoneDisplay() {
	// Arrange
	c, rec := s.createContext(http.MethodGet, "/api/voicemails", "")
	at := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	s.mockService.On("ListActive", mock.Anything, testAccountID).Return([]models.Voicemail{
		{ID: testVoicemailID, FromName: "Alice", ToName: "Bob", PhoneNumber: "5551234567", MessageContent: "Call back", DateTime: at, TakenBy: "Carol"},
		{ID: "b1", FromName: "Dan", ToName: "Bob", PhoneNumber: "ext. 42", MessageContent: "Hi", DateTime: at.Add(-time.Hour), TakenBy: "Carol"},
	}, nil)

	// Act
	err := s.handler.List(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	items := s.decodeList(rec)
	s.Require().Len(items, 2)
	s.Equal(testVoicemailID, items[0].ID)
	s.Equal("(555) 123-4567", items[0].PhoneDisplay)
	s.Equal("ext. 42", items[1].PhoneDisplay)
	s.True(items[0].DateTime.Equal(at))
}

// TestList_EmptyIsArray tests that an empty list serializes as [] not null
func (s *VoicemailHandlerTestSuite) TestList_EmptyIsArray() {
	c, rec := s.createContext(http.MethodGet, "/api/voicemails", "")
	s.mockService.On("ListActive", mock.Anything, testAccountID).Return([]models.Voicemail{}, nil)

	err := s.handler.List(c)

	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"data":[]`)
}

// TestList_StorageUnavailable tests that storage failures map to 503
func (s *VoicemailHandlerTestSuite) TestList_StorageUnavailable() {
	c, rec := s.createContext(http.MethodGet, "/api/voicemails", "")
	s.mockService.On("ListActive", mock.Anything, testAccountID).
		Return(nil, fmt.Errorf("failed to list voicemails: %w", apperrors.ErrStorageUnavailable))

	err := s.handler.List(c)

	s.NoError(err)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Equal(apperrors.CodeStorageUnavailable, s.decodeError(rec).Code)
}

// ==================== Create Tests ====================

// TestCreate_ValidInput tests logging a voicemail with valid input
func (s *VoicemailHandlerTestSuite) TestCreate_ValidInput() {
	// Arrange
	c, rec := s.createContext(http.MethodPost, "/api/voicemails", validBody)
	expected := models.VoicemailInput{
		FromName:       "Alice",
		ToName:         "Bob",
		PhoneNumber:    "555-123-4567",
		MessageContent: "Please call back",
		DateTime:       time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		TakenBy:        "Carol",
	}
	s.mockService.On("Create", mock.Anything, testAccountID, expected, services.SourceAPI).
		Return(testVoicemailID, nil)

	// Act
	err := s.handler.Create(c)

	// Assert
	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)

	var resp struct {
		Success bool            `json:"success"`
		Data    CreatedResponse `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Success)
	s.Equal(testVoicemailID, resp.Data.ID)
}

// TestCreate_RFC3339DateTime tests that offsets are converted to UTC
func (s *VoicemailHandlerTestSuite) TestCreate_RFC3339DateTime() {
	body := strings.Replace(validBody, "2024-03-01T09:30", "2024-03-01T09:30:00-05:00", 1)
	c, rec := s.createContext(http.MethodPost, "/api/voicemails", body)
	s.mockService.On("Create", mock.Anything, testAccountID,
		mock.MatchedBy(func(in models.VoicemailInput) bool {
			return in.DateTime.Equal(time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)) && in.DateTime.Location() == time.UTC
		}), services.SourceAPI).
		Return(testVoicemailID, nil)

	err := s.handler.Create(c)

	s.NoError(err)
	s.Equal(http.StatusCreated, rec.Code)
}

// TestCreate_MissingDateTime tests that date_time is required
func (s *VoicemailHandlerTestSuite) TestCreate_MissingDateTime() {
	c, rec := s.createContext(http.MethodPost, "/api/voicemails", `{"from_name":"Alice"}`)

	err := s.handler.Create(c)

	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decodeError(rec).Error, "date_time")
}

// TestCreate_InvalidDateTime tests that unparseable timestamps are rejected
func (s *VoicemailHandlerTestSuite) TestCreate_InvalidDateTime() {
	body := strings.Replace(validBody, "2024-03-01T09:30", "yesterday", 1)
	c, rec := s.createContext(http.MethodPost, "/api/voicemails", body)

	err := s.handler.Create(c)

	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decodeError(rec).Error, "date_time")
}

// TestCreate_InvalidBody tests malformed JSON
func (s *VoicemailHandlerTestSuite) TestCreate_InvalidBody() {
	c, rec := s.createContext(http.MethodPost, "/api/voicemails", `{not json`)

	err := s.handler.Create(c)

	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
}

// TestCreate_MissingField tests that a field error from the service becomes 400
func (s *VoicemailHandlerTestSuite) TestCreate_MissingField() {
	c, rec := s.createContext(http.MethodPost, "/api/voicemails", validBody)
	s.mockService.On("Create", mock.Anything, testAccountID, mock.Anything, services.SourceAPI).
		Return("", fmt.Errorf("%w: %w", apperrors.ErrInvalidInput,
			&validator.FieldError{Field: "taken_by", Err: validator.ErrEmptyInput}))

	err := s.handler.Create(c)

	s.NoError(err)
	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(s.decodeError(rec).Error, "taken_by")
}

// TestCreate_OwnerGone tests that a constraint violation becomes 409
func (s *VoicemailHandlerTestSuite) TestCreate_OwnerGone() {
	c, rec := s.createContext(http.MethodPost, "/api/voicemails", validBody)
	s.mockService.On("Create", mock.Anything, testAccountID, mock.Anything, services.SourceAPI).
		Return("", fmt.Errorf("failed to create voicemail: %w", apperrors.ErrConstraintViolation))

	err := s.handler.Create(c)

	s.NoError(err)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal(apperrors.CodeConstraintViolation, s.decodeError(rec).Code)
}

// ==================== Delete Tests ====================

// TestDelete_Returns204 tests deleting a voicemail
func (s *VoicemailHandlerTestSuite) TestDelete_Returns204() {
	c, rec := s.createContext(http.MethodDelete, "/api/voicemails/"+testVoicemailID, "")
	c.SetParamNames("id")
	c.SetParamValues(testVoicemailID)
	s.mockService.On("Delete", mock.Anything, testAccountID, testVoicemailID).Return(nil)

	err := s.handler.Delete(c)

	s.NoError(err)
	s.Equal(http.StatusNoContent, rec.Code)
}

// TestDelete_NoMatchStill204 tests that a foreign or missing id is not an error
func (s *VoicemailHandlerTestSuite) TestDelete_NoMatchStill204() {
	c, rec := s.createContext(http.MethodDelete, "/api/voicemails/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")
	s.mockService.On("Delete", mock.Anything, testAccountID, "not-a-uuid").Return(nil)

	err := s.handler.Delete(c)

	s.NoError(err)
	s.Equal(http.StatusNoContent, rec.Code)
}

// TestDelete_UnexpectedError tests that unknown errors are hidden behind 500
func (s *VoicemailHandlerTestSuite) TestDelete_UnexpectedError() {
	c, rec := s.createContext(http.MethodDelete, "/api/voicemails/"+testVoicemailID, "")
	c.SetParamNames("id")
	c.SetParamValues(testVoicemailID)
	s.mockService.On("Delete", mock.Anything, testAccountID, testVoicemailID).Return(errors.New("pq: deadlock detected"))

	err := s.handler.Delete(c)

	s.NoError(err)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "deadlock")
}

// ==================== MarkReturned Tests ====================

// TestMarkReturned_Returns200 tests marking a voicemail returned
func (s *VoicemailHandlerTestSuite) TestMarkReturned_Returns200() {
	c, rec := s.createContext(http.MethodPatch, "/api/voicemails/"+testVoicemailID+"/returned", "")
	c.SetParamNames("id")
	c.SetParamValues(testVoicemailID)
	s.mockService.On("MarkReturned", mock.Anything, testAccountID, testVoicemailID).Return(nil)

	err := s.handler.MarkReturned(c)

	s.NoError(err)
	s.Equal(http.StatusOK, rec.Code)
}

// TestMarkReturned_StorageUnavailable tests that storage failures map to 503
func (s *VoicemailHandlerTestSuite) TestMarkReturned_StorageUnavailable() {
	c, rec := s.createContext(http.MethodPatch, "/api/voicemails/"+testVoicemailID+"/returned", "")
	c.SetParamNames("id")
	c.SetParamValues(testVoicemailID)
	s.mockService.On("MarkReturned", mock.Anything, testAccountID, testVoicemailID).
		Return(fmt.Errorf("failed to mark voicemail as returned: %w", apperrors.ErrStorageUnavailable))

	err := s.handler.MarkReturned(c)

	s.NoError(err)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}
