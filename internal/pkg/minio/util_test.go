package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/huddle/2024/01/02/a%20b.png",
		PublicURL("https://cdn.example.com/", "huddle", "2024/01/02/a b.png"))
}
