package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupBody struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	AccountType string `json:"accountType" validate:"required,oneof=customer admin"`
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusConflict, "User with this email already exists")

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, ErrorBody{StatusCode: 409, Message: "User with this email already exists", Error: "Conflict"}, body)
}

func TestDecode(t *testing.T) {
	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"email":"a@x.com","password":"password123","accountType":"customer"}`, ""},
		{"empty", ``, "request body is required"},
		{"malformed", `{"email":`, "malformed JSON body"},
		{"bad email", `{"email":"nope","password":"password123","accountType":"customer"}`, "email must be a valid email address"},
		{"short password", `{"email":"a@x.com","password":"short","accountType":"customer"}`, "password must be at least 8 characters long"},
		{"bad type", `{"email":"a@x.com","password":"password123","accountType":"vendor"}`, "accountType must be one of: customer, admin"},
		{"missing", `{}`, "email is required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var dst signupBody
			err := Decode(req, &dst)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDecodeOptional_EmptyBody(t *testing.T) {
	var dst struct {
		RefreshToken string `json:"refreshToken"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, DecodeOptional(req, &dst))
	assert.Empty(t, dst.RefreshToken)
}

func TestPagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=500&offset=20", nil)
	limit, offset := Pagination(req, 50, 100)
	assert.Equal(t, int32(100), limit)
	assert.Equal(t, int32(20), offset)

	req = httptest.NewRequest(http.MethodGet, "/?limit=-1&offset=abc", nil)
	limit, offset = Pagination(req, 50, 100)
	assert.Equal(t, int32(50), limit)
	assert.Equal(t, int32(0), offset)
}

func TestQueryFloat(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?minPrice=12.5&maxPrice=x", nil)
	v, ok := QueryFloat(req, "minPrice")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)
	_, ok = QueryFloat(req, "maxPrice")
	assert.False(t, ok)
	_, ok = QueryFloat(req, "cityId")
	assert.False(t, ok)
}
