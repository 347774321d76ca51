// SPDX-License-Identifier: MIT

package openapi_server

type NavigatorRequest struct {
	Navigator string `json:"navigator"`
}

// NavigatorResponse names the default navigator of the router
type NavigatorResponse struct {
	Navigator string   `json:"navigator"`
	Available []string `json:"available"`
}

func AssertNavigatorRequestRequired(obj NavigatorRequest) error {
	return assertRequired(map[string]interface{}{
		"navigator": obj.Navigator,
	})
}
