package weechat

import (
	"fmt"

	mvc "github.com/Masterminds/semver/v3"
)

// DefaultMinVersion is the first WeeChat release shipping the api relay.
const DefaultMinVersion = ">= 4.1.0"

// CheckVersion verifies that v satisfies the constraint. Development builds
// ("4.5.0-dev") are compared by their release part.
func CheckVersion(v Version, constraint string) error {
	if constraint == "" {
		constraint = DefaultMinVersion
	}
	c, err := mvc.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	got, err := mvc.NewVersion(v.WeeChat)
	if err != nil {
		return fmt.Errorf("%w: cannot parse %q", ErrUnsupportedVersion, v.WeeChat)
	}
	if got.Prerelease() != "" {
		stripped, err := got.SetPrerelease("")
		if err == nil {
			got = &stripped
		}
	}
	if !c.Check(got) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrUnsupportedVersion, got, constraint)
	}
	return nil
}
