package service

import (
	"context"

	"github.com/Masterminds/semver/v3"
)

// SupportedAPI is the range of Drawing Service API versions this client speaks.
const SupportedAPI = ">= 1.0.0, < 2.0.0"

var apiConstraint = func() *semver.Constraints {
	c, err := semver.NewConstraint(SupportedAPI)
	if err != nil {
		panic(err)
	}
	return c
}()

// ServerInfo is the body of GET /version.
type ServerInfo struct {
	ServerVersion string `json:"serverVersion"`
	APIVersion    string `json:"apiVersion"`
}

// ServerVersion fetches the service's version information.
func (c *DrawingClient) ServerVersion(ctx context.Context) (ServerInfo, error) {
	body, err := c.client.ListResources(ctx, "version", nil)
	if err != nil {
		return ServerInfo{}, err
	}
	var info ServerInfo
	if err := decode(body, &info); err != nil {
		return ServerInfo{}, err
	}
	return info, nil
}

// CheckCompatible reports whether apiVersion falls in SupportedAPI.
func CheckCompatible(apiVersion string) error {
	v, err := semver.NewVersion(apiVersion)
	if err != nil {
		return ErrIncompatibleAPI.MsgErr("invalid api version "+apiVersion, err)
	}
	if !apiConstraint.Check(v) {
		return ErrIncompatibleAPI.Msg("api version " + v.String() + " is outside " + SupportedAPI)
	}
	return nil
}
