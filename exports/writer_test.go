package exports

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vnkhanh/survey-hub/models"
)

var sampleRows = []models.AnswerRow{
	{
		AppName:      "Acme",
		SurveyTitle:  "Onboarding",
		ResponseID:   "r1",
		UserID:       "u1",
		SubmittedAt:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		QuestionText: "Favourite colours?",
		Value:        "red,blue",
	},
	{
		AppName:      "Acme",
		SurveyTitle:  "Onboarding",
		ResponseID:   "r1",
		UserID:       "u1",
		SubmittedAt:  time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
		QuestionText: `Say "hi"`,
		Value:        "=HYPERLINK(\"x\")",
	},
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows))

	want := "App,Survey,Response ID,User ID,Submitted At,Question,Answer\n" +
		"Acme,Onboarding,r1,u1,2024-05-01T09:30:00Z,Favourite colours?,\"red,blue\"\n" +
		"Acme,Onboarding,r1,u1,2024-05-01T09:30:00Z,\"Say \"\"hi\"\"\",\"'=HYPERLINK(\"\"x\"\")\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "", nil))
	assert.Equal(t, "App,Survey,Response ID,User ID,Submitted At,Question,Answer\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleRows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Answers")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "red,blue", rows[1][6])
	// Cells are plain strings, so no formula prefix is needed.
	assert.Equal(t, "=HYPERLINK(\"x\")", rows[2][6])
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(io.Discard, "pdf", sampleRows))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv; charset=utf-8", ContentType(FormatCSV))
	assert.Contains(t, ContentType(FormatXLSX), "spreadsheetml")
	assert.Regexp(t, `^answers-\d{8}-\d{6}\.xlsx$`, FileName("answers", FormatXLSX))
}
