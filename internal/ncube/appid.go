package ncube

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ReleaseStatus is the lifecycle status of an application version.
type ReleaseStatus string

const (
	StatusSnapshot ReleaseStatus = "SNAPSHOT"
	StatusRelease  ReleaseStatus = "RELEASE"

	// HeadBranch is the canonical, branch-less variant of an application version.
	HeadBranch = "HEAD"

	// DefaultTenant is used by callers that do not partition by tenant.
	DefaultTenant = "NONE"
)

var (
	identityPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	versionPattern  = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// ApplicationID identifies one addressable variant of the cube space. Values are
// immutable; the derived constructors return new values, or the receiver itself when it
// is already in the requested state.
type ApplicationID struct {
	tenant  string
	app     string
	version string
	status  ReleaseStatus
	branch  string
}

// NewApplicationID validates the five identity fields. Status is upper-cased before
// validation.
func NewApplicationID(tenant, app, version string, status ReleaseStatus, branch string) (*ApplicationID, error) {
	id := &ApplicationID{
		tenant:  strings.TrimSpace(tenant),
		app:     strings.TrimSpace(app),
		version: strings.TrimSpace(version),
		status:  ReleaseStatus(strings.ToUpper(strings.TrimSpace(string(status)))),
		branch:  strings.TrimSpace(branch),
	}
	if err := id.validate(); err != nil {
		return nil, err
	}
	return id, nil
}

// MustApplicationID is NewApplicationID for literals known to be valid.
func MustApplicationID(tenant, app, version string, status ReleaseStatus, branch string) *ApplicationID {
	id, err := NewApplicationID(tenant, app, version, status, branch)
	if err != nil {
		panic(err)
	}
	return id
}

func (a *ApplicationID) validate() error {
	if err := validateIdentityPart("tenant", a.tenant); err != nil {
		return err
	}
	if err := validateIdentityPart("app", a.app); err != nil {
		return err
	}
	if err := ValidateVersion(a.version); err != nil {
		return err
	}
	if a.status != StatusSnapshot && a.status != StatusRelease {
		return IllegalArgument("status must be %s or %s, got %q", StatusSnapshot, StatusRelease, a.status)
	}
	return validateIdentityPart("branch", a.branch)
}

func validateIdentityPart(field, value string) error {
	if value == "" {
		return IllegalArgument("%s cannot be empty", field)
	}
	if !identityPattern.MatchString(value) {
		return IllegalArgument("%s %q contains reserved characters", field, value)
	}
	return nil
}

// ValidateVersion checks the major.minor.patch format.
func ValidateVersion(version string) error {
	if !versionPattern.MatchString(version) {
		return IllegalArgument("version %q must be major.minor.patch", version)
	}
	return nil
}

// ValidateCubeName checks a cube name is usable as a persistence key.
func ValidateCubeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return IllegalArgument("cube name cannot be empty")
	}
	if strings.ContainsAny(name, "/:~, \t\n") {
		return IllegalArgument("cube name %q contains reserved characters", name)
	}
	return nil
}

func (a *ApplicationID) Tenant() string { return a.tenant }
func (a *ApplicationID) App() string { return a.app }
func (a *ApplicationID) Version() string { return a.version }
func (a *ApplicationID) Status() ReleaseStatus { return a.status }
func (a *ApplicationID) Branch() string { return a.branch }

// IsHead reports whether the identity addresses HEAD.
func (a *ApplicationID) IsHead() bool { return strings.EqualFold(a.branch, HeadBranch) }

func (a *ApplicationID) IsSnapshot() bool { return a.status == StatusSnapshot }
func (a *ApplicationID) IsRelease() bool { return a.status == StatusRelease }

func (a *ApplicationID) with(version string, status ReleaseStatus, branch string) *ApplicationID {
	return &ApplicationID{tenant: a.tenant, app: a.app, version: version, status: status, branch: branch}
}

// AsHead returns the HEAD variant.
func (a *ApplicationID) AsHead() *ApplicationID {
	if a.IsHead() {
		return a
	}
	return a.with(a.version, a.status, HeadBranch)
}

// AsBranch returns the variant on the named branch. The name must be valid.
func (a *ApplicationID) AsBranch(branch string) (*ApplicationID, error) {
	if strings.EqualFold(a.branch, branch) {
		return a, nil
	}
	if err := validateIdentityPart("branch", branch); err != nil {
		return nil, err
	}
	return a.with(a.version, a.status, branch), nil
}

// AsRelease returns the RELEASE variant.
func (a *ApplicationID) AsRelease() *ApplicationID {
	if a.IsRelease() {
		return a
	}
	return a.with(a.version, StatusRelease, a.branch)
}

// AsSnapshot returns the SNAPSHOT variant.
func (a *ApplicationID) AsSnapshot() *ApplicationID {
	if a.IsSnapshot() {
		return a
	}
	return a.with(a.version, StatusSnapshot, a.branch)
}

// AsVersion returns the same coordinate at another version.
func (a *ApplicationID) AsVersion(version string) (*ApplicationID, error) {
	if a.version == version {
		return a, nil
	}
	if err := ValidateVersion(version); err != nil {
		return nil, err
	}
	return a.with(version, a.status, a.branch), nil
}

// CreateNewSnapshotID returns the SNAPSHOT identity at the given version, keeping the
// branch.
func (a *ApplicationID) CreateNewSnapshotID(version string) (*ApplicationID, error) {
	if a.version == version && a.IsSnapshot() {
		return a, nil
	}
	if err := ValidateVersion(version); err != nil {
		return nil, err
	}
	return a.with(version, StatusSnapshot, a.branch), nil
}

// Equal compares identities; tenant, app and branch compare case-insensitively.
func (a *ApplicationID) Equal(other *ApplicationID) bool {
	if a == other {
		return true
	}
	if a == nil || other == nil {
		return false
	}
	return strings.EqualFold(a.tenant, other.tenant) &&
		strings.EqualFold(a.app, other.app) &&
		a.version == other.version &&
		a.status == other.status &&
		strings.EqualFold(a.branch, other.branch)
}

// SameApp reports whether both identities belong to the same tenant and app.
func (a *ApplicationID) SameApp(other *ApplicationID) bool {
	return strings.EqualFold(a.tenant, other.tenant) && strings.EqualFold(a.app, other.app)
}

// CacheKey is a canonical case-folded key for maps and persistence lookups.
func (a *ApplicationID) CacheKey() string {
	return strings.ToLower(a.tenant) + "/" + strings.ToLower(a.app) + "/" + a.version + "/" +
		string(a.status) + "/" + strings.ToLower(a.branch)
}

func (a *ApplicationID) String() string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", a.tenant, a.app, a.version, a.status, a.branch)
}

type applicationIDJSON struct {
	Tenant  string        `json:"tenant"`
	App     string        `json:"app"`
	Version string        `json:"version"`
	Status  ReleaseStatus `json:"status"`
	Branch  string        `json:"branch"`
}

// MarshalJSON implements json.Marshaler.
func (a *ApplicationID) MarshalJSON() ([]byte, error) {
	return json.Marshal(applicationIDJSON{a.tenant, a.app, a.version, a.status, a.branch})
}

// UnmarshalJSON implements json.Unmarshaler and validates the decoded fields.
func (a *ApplicationID) UnmarshalJSON(data []byte) error {
	var raw applicationIDJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := NewApplicationID(raw.Tenant, raw.App, raw.Version, raw.Status, raw.Branch)
	if err != nil {
		return err
	}
	*a = *id
	return nil
}
