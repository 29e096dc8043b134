package urls

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContactViews(t *testing.T) {
	assert.Equal(t, "/contact/7/", Contact(7))
	assert.Equal(t, "/contact/7/update/", Update(7))
	assert.Equal(t, "/contact/7/delete/", Delete(7))
}

func TestLoginWithNext(t *testing.T) {
	assert.Equal(t, "/user/login/", LoginWithNext(""))
	assert.Equal(t, "/user/login/?next=%2Fcontact%2Fcreate%2F", LoginWithNext("/contact/create/"))
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                     "/",
		"/contact/1/update/":   "/contact/1/update/",
		"//evil.example.com/":  "/",
		"https://evil.example": "/",
		"relative/path":        "/",
		"/\\evil":              "/",
	}
	for next, want := range tests {
		assert.Equal(t, want, SafeNext(next, "/"), next)
	}
}
