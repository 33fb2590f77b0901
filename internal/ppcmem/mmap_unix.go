//go:build unix

package ppcmem

import "golang.org/x/sys/unix"

// newBacking reserves the guest address space with an anonymous mmap
// rather than make([]byte, ...): the guest image is typically far smaller
// than the full 4 GiB range, and mmap lets the kernel commit pages lazily
// instead of zeroing the whole region up front.
func newBacking(size uint64) []byte {
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return make([]byte, size)
	}
	return b
}
