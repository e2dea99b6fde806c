package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Email string   `json:"email" validate:"required,email"`
	Image string   `json:"image" validate:"omitempty,image_ref"`
	Tags  []string `json:"tags" validate:"min=1"`
}

func TestStructMessages(t *testing.T) {
	err := Struct(sample{Email: "nope", Image: "ftp://x"})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "email: must be a valid email address")
		assert.Contains(t, err.Error(), "image: must be an http(s) URL or a data:image URI")
		assert.Contains(t, err.Error(), "tags: needs at least 1 item(s)")
	}
}

func TestImageRef(t *testing.T) {
	cases := map[string]bool{
		"":                                  true,
		"https://example.com/a.png":         true,
		"http://example.com/a.png":          true,
		"data:image/png;base64,iVBORw0KGgo": true,
		"data:image/png,raw":                false,
		"/relative/path.png":                false,
		"javascript:alert(1)":               false,
	}
	for in, ok := range cases {
		err := Struct(sample{Email: "a@b.co", Image: in, Tags: []string{"x"}})
		if ok {
			assert.NoError(t, err, in)
		} else {
			assert.Error(t, err, in)
		}
	}
}
