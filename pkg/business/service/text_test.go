package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	ts := NewTextService()

	in := "<p>Кроссовки&nbsp;<b>Nike</b></p><p>Размер:   42</p><br/>Цвет &amp; материал"
	assert.Equal(t, "Кроссовки Nike\nРазмер: 42\nЦвет & материал", ts.CleanDescription(in))
}

func TestCleanDescription_NormalizesToNFC(t *testing.T) {
	ts := NewTextService()

	decomposed := "e\u0301"
	assert.Equal(t, "\u00e9", ts.CleanDescription(decomposed))
}

func TestCleanDescription_Empty(t *testing.T) {
	assert.Equal(t, "", NewTextService().CleanDescription(""))
}
