package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestExecuteStatementPage(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)

	var buf bytes.Buffer
	err = engine.Execute(&buf, "pages/finance/statement.html", TemplateData{
		Title: "Statement",
	})
	require.NoError(t, err)
	require.NotZero(t, buf.Len())
}
