package storage

import "syscall"

// diskFreeBytes reports free space in dir's filesystem: block size x free blocks.
func diskFreeBytes(dir string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return 0, err
	}
	return uint64(stat.Bsize) * stat.Bfree, nil
}
