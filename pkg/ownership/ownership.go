// Package ownership decides which resolved entries the invoking user may
// archive. The verdict per entry is a closed tri-state: include,
// skip-root-owned, or reject-requires-root.
package ownership

import (
	"github.com/amt911/config-saver/pkg/errors"
	"github.com/amt911/config-saver/pkg/logging"
	"github.com/amt911/config-saver/pkg/types"
)

// CheckPolicy enforces the only_root_user flag before any entry is
// processed. A root-only configuration run by a non-root invoker is rejected
// as a whole with a descriptive error; it never selectively skips.
func CheckPolicy(configName string, onlyRootUser bool, effectiveUID int) error {
	if !onlyRootUser || effectiveUID == 0 {
		return nil
	}
	return errors.Newf(errors.ErrPermissionPolicy,
		"configuration %q requires root privileges (only_root_user: true); run with sudo", configName).
		WithDetail("config", configName).
		WithDetail("effectiveUid", effectiveUID)
}

// Classify returns the verdict for a single entry given its owner ids and
// the invoking process's effective uid. Root may read anything; a non-root
// invoker skips files owned by root (uid or gid 0).
func Classify(ownerUID, ownerGID uint32, effectiveUID int) types.Decision {
	if effectiveUID == 0 {
		return types.DecisionInclude
	}
	if ownerUID == 0 || ownerGID == 0 {
		return types.DecisionSkipRootOwned
	}
	return types.DecisionInclude
}

// Filter applies Classify to every entry, dropping root-owned ones. Each
// skip is reported to the sink; nothing is silently dropped. Entries whose
// metadata cannot be read are kept: the transcoder reports them properly
// when the actual read fails.
func Filter(fsys types.FS, entries []types.ResolvedEntry, effectiveUID int, sink types.WarningSink) []types.ResolvedEntry {
	logger := logging.GetLogger("ownership")

	kept := entries[:0:0]
	for _, entry := range entries {
		fi, err := fsys.Lstat(entry.SourcePath)
		if err != nil {
			kept = append(kept, entry)
			continue
		}
		uid, gid, ok := ownerIDs(fi)
		if !ok {
			kept = append(kept, entry)
			continue
		}
		if Classify(uid, gid, effectiveUID) == types.DecisionSkipRootOwned {
			logger.Debug().Str("path", entry.SourcePath).Uint32("uid", uid).Uint32("gid", gid).
				Msg("root-owned file skipped")
			sink.Warn(types.WarnEvent{Kind: types.WarnRootOwnedSkip, Path: entry.SourcePath})
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}
