// Package urls names the addressable views of the application.
// Handlers navigate by these helpers, the router registers the matching patterns.
package urls

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	Index      = "/"
	Create     = "/contact/create/"
	Register   = "/user/create/"
	Login      = "/user/login/"
	Logout     = "/user/logout/"
	UserUpdate = "/user/update/"
	Health     = "/health"
	AdminAPI   = "/admin/api"
)

func Contact(id int64) string {
	return fmt.Sprintf("/contact/%d/", id)
}

func Update(id int64) string {
	return fmt.Sprintf("/contact/%d/update/", id)
}

func Delete(id int64) string {
	return fmt.Sprintf("/contact/%d/delete/", id)
}

// LoginWithNext is the login view remembering where the user was headed.
func LoginWithNext(next string) string {
	if next == "" || next == Login {
		return Login
	}
	return Login + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next when it is a local absolute path, fallback otherwise.
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return next
}
