//go:build unix

package ownership

import (
	"io/fs"
	"syscall"
)

// ownerIDs extracts the owning uid/gid from stat metadata
func ownerIDs(fi fs.FileInfo) (uid, gid uint32, ok bool) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return st.Uid, st.Gid, true
}
