package version

// Diff classifies the change from one version to another by the most
// significant component that moved. It returns "" when to is not newer.
func Diff(from, to Version) ReleaseType {
	if to.Compare(from) <= 0 {
		return ""
	}

	if to.Major != from.Major {
		if to.IsPrerelease() {
			return ReleasePremajor
		}
		return ReleaseMajor
	}
	if to.Minor != from.Minor {
		if to.IsPrerelease() {
			return ReleasePreminor
		}
		return ReleaseMinor
	}
	if to.Patch != from.Patch {
		if to.IsPrerelease() {
			return ReleasePrepatch
		}
		return ReleasePatch
	}

	// same release core, so either the prerelease moved or it was dropped
	if to.IsPrerelease() {
		return ReleasePrerelease
	}
	if from.Major > 0 && from.Minor == 0 && from.Patch == 0 {
		return ReleaseMajor
	}
	if from.Patch == 0 {
		return ReleaseMinor
	}
	return ReleasePatch
}
