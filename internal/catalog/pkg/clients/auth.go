package clients

import (
	"net/http"
	"strings"
)

type AuthEngine interface {
	GetApiKey() string
	SetApiKey(request *http.Request)
}

type BearerAuth struct {
	apiKey string
}

func (b *BearerAuth) GetApiKey() string {
	return b.apiKey
}

func (b *BearerAuth) SetApiKey(request *http.Request) {
	request.Header.Set("Authorization", "Bearer "+b.apiKey)
}

// HeaderAuth кладет токен как есть в произвольный заголовок (4partners: X-Auth-Token).
type HeaderAuth struct {
	header string
	apiKey string
}

func (h *HeaderAuth) GetApiKey() string {
	return h.apiKey
}

func (h *HeaderAuth) SetApiKey(request *http.Request) {
	request.Header.Set(h.header, h.apiKey)
}

// NewAuth выбирает схему по имени заголовка: Authorization -> Bearer, иначе токен в заголовке.
func NewAuth(header, apiKey string) AuthEngine {
	if strings.EqualFold(header, "Authorization") {
		return &BearerAuth{apiKey: apiKey}
	}
	return &HeaderAuth{header: header, apiKey: apiKey}
}
