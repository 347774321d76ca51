// SPDX-License-Identifier: MIT

package openapi_server

type RouteRequest struct {
	Origin      Point  `json:"origin"`
	Destination Point  `json:"destination"`
	Navigator   string `json:"navigator,omitempty"` // default navigator of the router if empty
	Mode        string `json:"mode,omitempty"`      // distance, static or traffic
}

// AssertRouteRequestRequired checks if the required fields are not zero-ed
func AssertRouteRequestRequired(obj RouteRequest) error {
	if err := AssertPointRequired(obj.Origin); err != nil {
		return err
	}
	return AssertPointRequired(obj.Destination)
}

type RankRequest struct {
	Origin      Point  `json:"origin"`
	Destination Point  `json:"destination"`
	Mode        string `json:"mode,omitempty"`
	Count       int    `json:"count,omitempty"`
	Distinct    bool   `json:"distinct,omitempty"`
}

func AssertRankRequestRequired(obj RankRequest) error {
	if err := AssertPointRequired(obj.Origin); err != nil {
		return err
	}
	return AssertPointRequired(obj.Destination)
}
