package clients

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate([]byte("short"), 10))
	assert.Equal(t, "abc...", truncate([]byte("abcdef"), 3))
	// «О» занимает байты 0-1, «ш» 2-3: граница 3 попадает внутрь символа
	assert.Equal(t, "О...", truncate([]byte("Ошибка"), 3))
	assert.Equal(t, "Ош...", truncate([]byte("Ошибка"), 4))
}

func TestDoRequest_LongCyrillicErrorStaysValidUTF8(t *testing.T) {
	body := "xx" + strings.Repeat("ошибка ", 100)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, body)
	})

	page := client.ListProducts(context.Background(), nil)

	require.Error(t, page.Err)
	assert.True(t, errors.Is(page.Err, ErrUnexpectedStatus))
	assert.True(t, utf8.ValidString(page.Err.Error()), "got %q", page.Err.Error())
}
