// Package image loads a decoded guest code image: a minimal stand-in for
// the real XEX loader, which spec.md and SPEC_FULL.md both treat as an
// external collaborator. The format here mirrors the teacher's ReadImage
// big-endian origin-plus-payload convention (internal/lc3/utils.go in the
// reference corpus) rather than real XEX container parsing, since the
// container format itself is out of scope.
package image

import (
	"encoding/binary"
	"io"
	"os"

	"ppcrecomp/internal/ppc"
	"ppcrecomp/internal/ppcerr"
)

// Image is a decoded guest program: one contiguous code region, its base
// virtual address, and the guest address execution should start at.
type Image struct {
	Code    []byte
	BaseVA  uint32
	EntryVA uint32
	Exports []uint32 // additional known function entry points
}

// Load reads path as: a big-endian uint32 base VA, a big-endian uint32
// entry VA, a big-endian uint32 export count N, N big-endian uint32 export
// VAs, then the raw code bytes running from BaseVA onward.
func Load(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ppcerr.Wrap(ppcerr.BadImage, 0, "opening image "+path, err)
	}
	defer f.Close()

	var header struct {
		BaseVA, EntryVA, ExportCount uint32
	}
	if err := binary.Read(f, binary.BigEndian, &header); err != nil {
		return nil, ppcerr.Wrap(ppcerr.BadImage, 0, "reading image header", err)
	}

	exports := make([]uint32, header.ExportCount)
	if err := binary.Read(f, binary.BigEndian, &exports); err != nil {
		return nil, ppcerr.Wrap(ppcerr.BadImage, header.BaseVA, "reading export table", err)
	}

	code, err := io.ReadAll(f)
	if err != nil {
		return nil, ppcerr.Wrap(ppcerr.BadImage, header.BaseVA, "reading code section", err)
	}

	return &Image{
		Code:    code,
		BaseVA:  header.BaseVA,
		EntryVA: header.EntryVA,
		Exports: exports,
	}, nil
}

// Environment derives the internal/ppc.Environment this image implies, for
// handing to the function map and flow recovery.
func (img *Image) Environment() ppc.Environment {
	return ppc.Environment{
		ImageBase: uint64(img.BaseVA),
		ImageSize: uint64(len(img.Code)),
		CodeBase:  img.BaseVA,
		CodeSize:  uint32(len(img.Code)),
	}
}

// EntryPoints returns every address flow recovery should seed its worklist
// with: the program entry plus every exported symbol.
func (img *Image) EntryPoints() []uint32 {
	return append([]uint32{img.EntryVA}, img.Exports...)
}
