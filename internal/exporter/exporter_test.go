package exporter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tableone/internal/client"
	"tableone/internal/config"
	apperrors "tableone/internal/errors"
	"tableone/internal/transform"
	"tableone/pkg/contracts/domain"
)

func sampleTable() *transform.ExportTable {
	return &transform.ExportTable{
		Columns: []string{"Variable", "Control (n=12)", "P"},
		Rows: []transform.ExportRow{
			{"Variable": "Age", "Control (n=12)": "42.1 ± 3.0", "P": "0.03"},
			{"Variable": "    ├─ Male", "Control (n=12)": "6 (50%)", "P": ""},
		},
	}
}

func TestExcelExporter_RoundTrip(t *testing.T) {
	artifact, appErr := NewExcelExporter(nil).Export(sampleTable(), "", "")
	require.Nil(t, appErr)

	assert.Equal(t, DefaultExcelFilename, artifact.Filename)
	assert.Equal(t, MIMEExcel, artifact.MIME)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Table 1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Variable", "Control (n=12)", "P"}, rows[0])
	assert.Equal(t, "42.1 ± 3.0", rows[1][1])
	assert.Equal(t, "    ├─ Male", rows[2][0])
}

func TestExcelExporter_DateSerialsRenderAsDates(t *testing.T) {
	table := &transform.ExportTable{
		Columns: []string{"Variable", "Value"},
		Rows: []transform.ExportRow{
			{"Variable": "Enrollment date", "Value": float64(45108)},
			{"Variable": "Score", "Value": float64(12.5)},
		},
	}

	artifact, appErr := NewExcelExporter(nil).Export(table, "", "")
	require.Nil(t, appErr)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Table 1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2023-07-01", rows[1][1])
	assert.Equal(t, "12.5", rows[2][1])
}

func TestExcelExporter_CustomSheetAndFilename(t *testing.T) {
	artifact, appErr := NewExcelExporter(nil).Export(sampleTable(), "Summary", "out.xlsx")
	require.Nil(t, appErr)
	assert.Equal(t, "out.xlsx", artifact.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
}

func newWordClient(t *testing.T, handler http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return client.New(config.BackendConfig{
		BaseURL:         srv.URL,
		RequestTimeout:  2 * time.Second,
		AnalysisTimeout: 5 * time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  10,
	})
}

func TestWordExporter_Success(t *testing.T) {
	docBytes := []byte("PK\x03\x04fake-docx")
	c := newWordClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/export-word", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Group", body["groupVar"])
		w.Write(docBytes)
	})

	artifact, appErr := NewWordExporter(c, nil).Export(context.Background(), WordPayload{
		ResultTable: []domain.TableRow{{"Variable": "**Age"}},
		GroupVar:    "Group",
		GroupCounts: domain.GroupCounts{"A": 12},
	}, "token", "cid-1", "")
	require.Nil(t, appErr)

	assert.Equal(t, DefaultWordFilename, artifact.Filename)
	assert.Equal(t, MIMEWord, artifact.MIME)
	assert.Equal(t, docBytes, artifact.Data)
}

func TestWordExporter_ServerFailureKeepsStatus(t *testing.T) {
	c := newWordClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"render failed"}`, http.StatusInternalServerError)
	})

	_, appErr := NewWordExporter(c, nil).Export(context.Background(), WordPayload{}, "token", "cid-1", "")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeServerError, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Details["status"])
}

func TestWordExporter_NonServerStatusBecomesServerError(t *testing.T) {
	c := newWordClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"no such route"}`, http.StatusNotFound)
	})

	_, appErr := NewWordExporter(c, nil).Export(context.Background(), WordPayload{}, "token", "cid-1", "")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeServerError, appErr.Code, "document endpoint failures normalize to SERVER_ERROR")
	assert.Equal(t, http.StatusNotFound, appErr.Details["status"])
	assert.NotNil(t, appErr.Cause)
}

func TestWordExporter_TransportFailureIsFileError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := client.New(config.BackendConfig{
		BaseURL:         srv.URL,
		RequestTimeout:  time.Second,
		AnalysisTimeout: time.Second,
		RateLimitRPS:    100,
		RateLimitBurst:  10,
	})

	_, appErr := NewWordExporter(c, nil).Export(context.Background(), WordPayload{}, "token", "cid-1", "")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeFileError, appErr.Code)
}

func TestWordExporter_EmptyBody(t *testing.T) {
	c := newWordClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, appErr := NewWordExporter(c, nil).Export(context.Background(), WordPayload{}, "token", "cid-1", "")
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeServerError, appErr.Code)
}

func TestCSVExporter(t *testing.T) {
	artifact, appErr := NewCSVExporter(nil).Export(sampleTable(), "")
	require.Nil(t, appErr)

	assert.Equal(t, DefaultCSVFilename, artifact.Filename)
	assert.True(t, bytes.HasPrefix(artifact.Data, []byte{0xEF, 0xBB, 0xBF}), "CSV carries a UTF-8 BOM")

	text := string(bytes.TrimPrefix(artifact.Data, []byte{0xEF, 0xBB, 0xBF}))
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Variable,Control (n=12),P", lines[0])
	assert.Contains(t, lines[1], "42.1 ± 3.0")
}

func TestCSVExporter_DateSerialsRenderAsDates(t *testing.T) {
	table := &transform.ExportTable{
		Columns: []string{"Variable", "Value"},
		Rows: []transform.ExportRow{
			{"Variable": "Enrollment date", "Value": float64(45108)},
		},
	}

	artifact, appErr := NewCSVExporter(nil).Export(table, "")
	require.Nil(t, appErr)
	assert.Contains(t, string(artifact.Data), "Enrollment date,2023-07-01")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	artifact := &Artifact{Filename: "x.csv", MIME: MIMECSV, Data: []byte("a,b\n")}

	path := dir + "/nested/out.csv"
	require.Nil(t, WriteFile(artifact, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, artifact.Data, data)
}
