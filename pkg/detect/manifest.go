// SPDX-License-Identifier: MPL-2.0

package detect

import "encoding/json"

type (
	// manifest is the narrow view of package.json that detection needs. The
	// two relevant fields are kept raw so a wrong-typed value (for example a
	// numeric packageManager) degrades to "no signal" for that field alone
	// instead of poisoning the whole document.
	manifest struct {
		PackageManager json.RawMessage `json:"packageManager"`
		DevEngines     struct {
			PackageManager json.RawMessage `json:"packageManager"`
		} `json:"devEngines"`
	}

	// devEnginesAgent is the object form used by devEngines.packageManager.
	// Unlike packageManager it splits name and version into separate fields,
	// and the version is usually a range rather than an exact pin.
	devEnginesAgent struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
)

// parseManifest decodes manifest content. Malformed JSON is no signal.
func parseManifest(data []byte) (*manifest, bool) {
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, false
	}
	return &m, true
}

// packageManager returns the packageManager field when it is a non-empty
// string.
func (m *manifest) packageManager() (string, bool) {
	var s string
	if err := json.Unmarshal(m.PackageManager, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

// devEnginesPackageManager returns the devEngines.packageManager object when
// it is present with a string name.
func (m *manifest) devEnginesPackageManager() (devEnginesAgent, bool) {
	var de devEnginesAgent
	if err := json.Unmarshal(m.DevEngines.PackageManager, &de); err != nil || de.Name == "" {
		return devEnginesAgent{}, false
	}
	return de, true
}

// resolveManifest extracts a detection result from a parsed manifest. The
// packageManager field is always consulted first and, when present as a
// string, its outcome is final for this manifest. devEngines.packageManager
// is consulted only when that strategy is enabled for the call.
func resolveManifest(m *manifest, devEngines bool, onUnknown UnknownHandler) *Result {
	if spec, ok := m.packageManager(); ok {
		return ParseSpecifier(spec, onUnknown)
	}
	if devEngines {
		if de, ok := m.devEnginesPackageManager(); ok {
			return resolveAgent(de.Name, normalizeVersion(de.Version), de.Name+"@"+de.Version, onUnknown)
		}
	}
	return nil
}
