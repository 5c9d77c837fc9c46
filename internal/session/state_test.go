package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tableone/internal/errors"
	"tableone/pkg/contracts/domain"
)

func TestExportImportRoundTrip(t *testing.T) {
	src := NewStore()
	src.SetClassification(domain.VariableClassification{
		GroupVar: "group",
		CatVars:  []string{"sex", "smoker"},
		ContVars: []string{"age", "bmi"},
	})
	src.SetFillNA(true, domain.ImputeKNN)
	src.SetAutoMode(true, "default")

	data, appErr := src.ExportState()
	require.Nil(t, appErr)

	dst := NewStore()
	require.Nil(t, dst.ImportState(data))

	assert.Equal(t, src.Classification().GroupVar, dst.Classification().GroupVar)
	assert.Equal(t, src.Classification().CatVars, dst.Classification().CatVars)
	assert.Equal(t, src.Classification().ContVars, dst.Classification().ContVars)

	srcFill, srcMethod := src.FillNA()
	dstFill, dstMethod := dst.FillNA()
	assert.Equal(t, srcFill, dstFill)
	assert.Equal(t, srcMethod, dstMethod)

	srcAuto, srcModel := src.AutoMode()
	dstAuto, dstModel := dst.AutoMode()
	assert.Equal(t, srcAuto, dstAuto)
	assert.Equal(t, srcModel, dstModel)
}

func TestExportState_DocumentShape(t *testing.T) {
	s := NewStore()
	s.SetClassification(domain.VariableClassification{GroupVar: "group"})
	s.SetAutoMode(true, "fast")

	data, appErr := s.ExportState()
	require.Nil(t, appErr)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	vars, ok := doc["variables"].(map[string]any)
	require.True(t, ok, "document must carry a variables object")
	assert.Equal(t, "group", vars["groupVar"])
	assert.Equal(t, true, doc["autoAnalysisMode"])
	assert.Equal(t, "fast", doc["aiModel"])
}

func TestImportState_MalformedJSON(t *testing.T) {
	s := NewStore()

	appErr := s.ImportState([]byte("{not json"))
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestImportState_AppliesDisjointnessInvariant(t *testing.T) {
	doc := []byte(`{
		"variables": {
			"groupVar": "group",
			"catVars": ["group", "sex"],
			"contVars": ["bmi"],
			"fillNA": false
		},
		"autoAnalysisMode": false
	}`)

	s := NewStore()
	require.Nil(t, s.ImportState(doc))

	c := s.Classification()
	assert.Equal(t, "group", c.GroupVar)
	assert.Equal(t, []string{"sex"}, c.CatVars, "group var stripped on import")
}
