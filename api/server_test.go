package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rpupo63/company-rating-backend/database"
	"github.com/rpupo63/company-rating-backend/metrics"
	"github.com/rpupo63/company-rating-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var metadataHeader = []any{"COMPANY", "PROJECT", "LOCATION", "Business Domain", "Tags"}

var stipendHeader = []any{"COMPANY", "STIPEND"}

func xlsx(t *testing.T, records ...[]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, record := range records {
		row := record
		require.NoError(t, f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+1), &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

type part struct {
	field    string
	filename string
	content  []byte
}

func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newRouter(database.NewMemory(), withMetrics(metrics.New()))
}

func do(t *testing.T, h http.Handler, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func uploadSample(t *testing.T, h http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t,
		part{"companies_details", "companies.xlsx", xlsx(t,
			metadataHeader,
			[]any{"Acme", "P1", "NY", "Fintech", "ai, fintech"},
			[]any{"Acme", "P2", "NY", "Fintech", "ai, fintech"},
			[]any{"Globex", "G1", "Berlin", "Energy", "energy"},
		)},
		part{"stipend_details", "stipends.xlsx", xlsx(t,
			stipendHeader,
			[]any{"Acme", 5000},
			[]any{"Globex", 3000},
		)},
	)
	return do(t, h, http.MethodPost, "/upload", body, contentType)
}

func TestUploadAndRead(t *testing.T) {
	h := newTestRouter(t)

	rec := uploadSample(t, h)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	upload := decode[UploadResponse](t, rec)
	assert.Equal(t, 2, upload.TotalUploadedFromExcel)
	assert.Equal(t, "Imported 2 companies.", upload.Message)

	rec = do(t, h, http.MethodGet, "/companies", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"Acme", "Globex"}, decode[CompaniesResponse](t, rec).Companies)

	rec = do(t, h, http.MethodGet, "/company/Acme", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	company := decode[CompanyResponse](t, rec).Company
	assert.Equal(t, "Acme", company.Company)
	assert.Equal(t, "NY", company.Location)
	assert.Equal(t, "Fintech", company.BusinessDomain)
	assert.Equal(t, []string{"ai", "fintech"}, company.Tags)
	assert.Equal(t, 5000.0, company.Stipend)
	require.Len(t, company.Projects, 2)
	assert.Equal(t, "P1", company.Projects[0].Name)
	assert.Nil(t, company.Projects[0].Rating)
	assert.NotEmpty(t, company.ID)
}

func TestCompanyJSONShape(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, uploadSample(t, h).Code)

	rec := do(t, h, http.MethodGet, "/company/Globex", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	company := raw["company"]
	for _, key := range []string{
		"_id", "company", "location", "business_domain", "tags", "stipend", "projects",
		"rating_company_overall", "rating_location", "rating_stipend", "reached_outreach", "remarks",
	} {
		assert.Contains(t, company, key)
	}
	assert.Nil(t, company["rating_location"])
}

func TestGetCompanyNotFound(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, uploadSample(t, h).Code)

	rec := do(t, h, http.MethodGet, "/company/Initech", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "error", decode[ErrorResponse](t, rec).Status)

	rec = do(t, h, http.MethodGet, "/company/acme", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetCompanyEscapedName(t *testing.T) {
	names := []string{"Acme Labs", "50% Ventures", "a%41", "AT/T Research", "R&D?"}

	h := newTestRouter(t)
	companies := [][]any{metadataHeader}
	stipends := [][]any{stipendHeader}
	for _, name := range names {
		companies = append(companies, []any{name, "P1", "NY", "Fintech", ""})
		stipends = append(stipends, []any{name, 100})
	}
	body, contentType := multipartBody(t,
		part{"companies_details", "companies.xlsx", xlsx(t, companies...)},
		part{"stipend_details", "stipends.xlsx", xlsx(t, stipends...)},
	)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/upload", body, contentType).Code)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, "/company/"+url.PathEscape(name), nil, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, name, decode[CompanyResponse](t, rec).Company.Company)

			rec = do(t, h, http.MethodPost, "/company/"+url.PathEscape(name)+"/update",
				bytes.NewBufferString(`{"remarks": "seen"}`), "application/json")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}

	// "a%41" must not be decoded a second time into "aA"
	rec := do(t, h, http.MethodGet, "/company/aA", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateCompany(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, uploadSample(t, h).Code)

	patch := `{"rating_location": 4, "project_ratings": [{"name": "P1", "rating": 5}], "remarks": "good"}`
	rec := do(t, h, http.MethodPost, "/company/Acme/update", bytes.NewBufferString(patch), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Company updated.", decode[MessageResponse](t, rec).Message)

	rec = do(t, h, http.MethodGet, "/company/Acme", nil, "")
	company := decode[CompanyResponse](t, rec).Company
	require.NotNil(t, company.RatingLocation)
	assert.Equal(t, 4.0, *company.RatingLocation)
	assert.Nil(t, company.RatingCompanyOverall)
	assert.Equal(t, "good", company.Remarks)
	require.NotNil(t, company.Projects[0].Rating)
	assert.Equal(t, 5.0, *company.Projects[0].Rating)
	assert.Nil(t, company.Projects[1].Rating)
}

func TestUpdateCompanyErrors(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, uploadSample(t, h).Code)

	tests := []struct {
		name   string
		target string
		body   string
		status int
	}{
		{"empty body", "/company/Acme/update", "", http.StatusBadRequest},
		{"empty object", "/company/Acme/update", "{}", http.StatusBadRequest},
		{"unknown keys only", "/company/Acme/update", `{"stipend": 10}`, http.StatusBadRequest},
		{"not json", "/company/Acme/update", "rating=4", http.StatusBadRequest},
		{"wrong type", "/company/Acme/update", `{"rating_location": "high"}`, http.StatusBadRequest},
		{"unknown company", "/company/Initech/update", `{"remarks": "x"}`, http.StatusNotFound},
		{"unknown company with projects", "/company/Initech/update", `{"project_ratings": []}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.target, bytes.NewBufferString(tt.body), "application/json")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRanking(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, uploadSample(t, h).Code)

	rec := do(t, h, http.MethodPost, "/company/Acme/update",
		bytes.NewBufferString(`{"rating_company_overall": 4, "project_ratings": [{"name": "P1", "rating": 5}, {"name": "P2", "rating": 3}]}`),
		"application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/ranking", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	ranking := decode[RankingResponse](t, rec).Ranking
	require.Len(t, ranking, 2)
	assert.Equal(t, models.RankedCompany{Company: "Acme", Location: "NY", Stipend: 5000, AverageScore: 4}, ranking[0])
	assert.Equal(t, models.RankedCompany{Company: "Globex", Location: "Berlin", Stipend: 3000, AverageScore: 0}, ranking[1])
}

func TestRankingEmptyStore(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/ranking", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ranking": []}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/companies", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"companies": []}`, rec.Body.String())
}

func TestReuploadReplacesCompanies(t *testing.T) {
	h := newTestRouter(t)
	require.Equal(t, http.StatusOK, uploadSample(t, h).Code)

	body, contentType := multipartBody(t,
		part{"companies_details", "companies.xlsx", xlsx(t, metadataHeader, []any{"Initech", "TPS", "Austin", "Software", "office"})},
		part{"stipend_details", "stipends.xlsx", xlsx(t, stipendHeader, []any{"Initech", 1200})},
	)
	rec := do(t, h, http.MethodPost, "/upload", body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/companies", nil, "")
	assert.Equal(t, []string{"Initech"}, decode[CompaniesResponse](t, rec).Companies)
}

func TestUploadRejections(t *testing.T) {
	companies := xlsx(t, metadataHeader, []any{"Acme", "P1", "NY", "Fintech", "ai"})
	stipends := xlsx(t, stipendHeader, []any{"Acme", 10})

	tests := []struct {
		name   string
		parts  []part
		status int
	}{
		{
			name:   "missing stipend file",
			parts:  []part{{"companies_details", "companies.xlsx", companies}},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing both files",
			parts:  nil,
			status: http.StatusBadRequest,
		},
		{
			name: "wrong extension",
			parts: []part{
				{"companies_details", "companies.csv", []byte("COMPANY\nAcme\n")},
				{"stipend_details", "stipends.xlsx", stipends},
			},
			status: http.StatusBadRequest,
		},
		{
			name: "missing column",
			parts: []part{
				{"companies_details", "companies.xlsx", xlsx(t, []any{"COMPANY", "PROJECT"}, []any{"Acme", "P1"})},
				{"stipend_details", "stipends.xlsx", stipends},
			},
			status: http.StatusBadRequest,
		},
		{
			name: "text stipend",
			parts: []part{
				{"companies_details", "companies.xlsx", companies},
				{"stipend_details", "stipends.xlsx", xlsx(t, stipendHeader, []any{"Acme", "lots"})},
			},
			status: http.StatusBadRequest,
		},
		{
			name: "corrupt workbook",
			parts: []part{
				{"companies_details", "companies.xlsx", []byte("not a workbook")},
				{"stipend_details", "stipends.xlsx", stipends},
			},
			status: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t)
			require.Equal(t, http.StatusOK, uploadSample(t, h).Code)

			body, contentType := multipartBody(t, tt.parts...)
			rec := do(t, h, http.MethodPost, "/upload", body, contentType)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())

			// a rejected upload leaves the previous import in place
			rec = do(t, h, http.MethodGet, "/companies", nil, "")
			assert.ElementsMatch(t, []string{"Acme", "Globex"}, decode[CompaniesResponse](t, rec).Companies)
		})
	}
}

func TestUploadNotMultipart(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/upload", bytes.NewBufferString(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)

	require.Equal(t, http.StatusOK, uploadSample(t, h).Code)
	rec = do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "company_imports_total"), "imports counter is exported")
}

func TestCORSPreflight(t *testing.T) {
	h := newRouter(database.NewMemory(), withAcceptedOrigins([]string{"https://ratings.example.com"}))

	req := httptest.NewRequest(http.MethodOptions, "/companies", nil)
	req.Header.Set("Origin", "https://ratings.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://ratings.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUploadTooLarge(t *testing.T) {
	h := newRouter(database.NewMemory(), withMaxUploadBytes(1024))

	body, contentType := multipartBody(t,
		part{"companies_details", "companies.xlsx", bytes.Repeat([]byte("x"), 4096)},
		part{"stipend_details", "stipends.xlsx", bytes.Repeat([]byte("y"), 4096)},
	)
	rec := do(t, h, http.MethodPost, "/upload", body, contentType)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
}
