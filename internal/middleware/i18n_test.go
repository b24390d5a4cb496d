package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/license-server/internal/i18n"
)

func TestParseLanguage(t *testing.T) {
	require.NoError(t, i18n.Initialize("en"))

	tests := map[string]string{
		"":                           "en",
		"ru":                         "ru",
		"ru-RU,ru;q=0.9,en;q=0.8":    "ru",
		"de-DE,de;q=0.9,en-US;q=0.5": "en",
		"fr":                         "en",
		"RU_ru":                      "ru",
	}

	for header, want := range tests {
		assert.Equal(t, want, parseLanguage(header, "en"), header)
	}
}
