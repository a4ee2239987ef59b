package domain

// Overlay is the per-target polyfill map built by PolyfillDiscovery: it
// maps an original root file's absolute path to the absolute path of the
// replacement file whose content should be substituted in its place. The
// substituted file keeps the original path's identity.
type Overlay map[string]string

// ReplacementFor returns the replacement path for an original path, and
// whether an overlay entry exists for it.
func (o Overlay) ReplacementFor(originalPath string) (string, bool) {
	if o == nil {
		return "", false
	}
	replacement, ok := o[originalPath]
	return replacement, ok
}

// EffectiveSuffix returns the configured suffix only if the overlay
// discovered at least one replacement; otherwise it returns "" so that a
// target which configures a suffix but has no matching sibling files
// dedups with an unsuffixed sibling.
func EffectiveSuffix(configuredSuffix string, overlay Overlay) string {
	if len(overlay) == 0 {
		return ""
	}
	return configuredSuffix
}
