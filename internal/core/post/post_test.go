package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostString(t *testing.T) {
	assert.Equal(t, "short", Post{Text: "short"}.String())
	assert.Equal(t, "Тестовый пост, ", Post{Text: "Тестовый пост, созданный для проверки"}.String())
}
