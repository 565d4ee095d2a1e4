package merge

import "bookbinder/internal/adts"

// ValidateConsistency checks that every frame in every part shares the audio
// configuration of the first frame of the first non-empty part. It returns
// that reference configuration on success and a *ConfigMismatchError naming
// the first offending frame otherwise. Empty parts are skipped; they carry no
// configuration to disagree with.
//
// The decision to fall back lives in the orchestrator; this layer never
// attempts a partial merge.
func ValidateConsistency(parts []*Part) (adts.Config, error) {
	var reference adts.Config
	haveReference := false

	for _, part := range parts {
		for i, frame := range part.Frames {
			if !haveReference {
				reference = frame.Config()
				haveReference = true
				continue
			}
			if found := frame.Config(); found != reference {
				return adts.Config{}, &ConfigMismatchError{
					Path:       part.Path,
					OrderIndex: part.OrderIndex,
					FrameIndex: i,
					Expected:   reference,
					Found:      found,
				}
			}
		}
	}

	if !haveReference {
		return adts.Config{}, ErrNoDecodableAudio
	}
	return reference, nil
}
