// Package hostversion gates features on the plugin SDK version the host
// reports.
package hostversion

import (
	"fmt"

	"github.com/hashicorp/go-version"

	"github.com/skyframe-dev/xplm-sdk/domain/errors"
)

// Minimum SDK versions of optional host APIs.
var (
	FlightLoops = version.Must(version.NewVersion("2.1.0"))
	Instancing  = version.Must(version.NewVersion("3.0.0"))
)

// FromSDK converts the host's integer encoding (303 for 3.0.3) to a
// version. Values below 100 are read as a bare major version.
func FromSDK(sdk int) *version.Version {
	if sdk < 100 {
		return version.Must(version.NewVersion(fmt.Sprintf("%d.0.0", max(sdk, 0))))
	}
	return version.Must(version.NewVersion(fmt.Sprintf("%d.%d.%d", sdk/100, (sdk/10)%10, sdk%10)))
}

// Gate answers feature checks for one host. The zero Gate allows
// everything.
type Gate struct {
	host *version.Version
}

// New creates a Gate for a host reporting sdk.
func New(sdk int) *Gate {
	return &Gate{host: FromSDK(sdk)}
}

// Host returns the host's SDK version, or nil for an ungated Gate.
func (g *Gate) Host() *version.Version {
	if g == nil {
		return nil
	}
	return g.host
}

// Supports reports whether the host is at least minimum.
func (g *Gate) Supports(minimum *version.Version) bool {
	if g == nil || g.host == nil {
		return true
	}
	return g.host.GreaterThanOrEqual(minimum)
}

// Require fails with AcquisitionFailed when the host predates minimum.
func (g *Gate) Require(feature string, minimum *version.Version) error {
	if g.Supports(minimum) {
		return nil
	}
	return &errors.AcquisitionFailedError{
		Kind:   feature,
		Reason: fmt.Sprintf("host SDK %s is older than %s", g.host, minimum),
	}
}
