package storage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "chat/a.json", objectKey("", "/chat/a.json"))
	assert.Equal(t, "sentichain/chat/a.json", objectKey("sentichain", "chat/a.json"))
}

func TestPublicURL(t *testing.T) {
	u, _ := url.Parse("https://minio.example.com:9000")
	assert.Equal(t, "https://minio.example.com:9000/chats/chat/a.json", publicURL(u, "chats", "chat/a.json"))
	assert.Equal(t, "http:///b/o", publicURL(nil, "b", "o"))
}
