// First-fit memory allocator for DMA buffers
// https://github.com/usbarmory/tamago
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dma provides primitives for direct memory allocation and
// alignment, it is primarily used in bare metal device driver operation to
// avoid passing Go pointers for DMA purposes.
//
// This package is only meant to be used with `GOOS=tamago GOARCH=arm` as
// supported by the TamaGo framework for bare metal Go on ARM SoCs, see
// https://github.com/usbarmory/tamago.
package dma

import (
	"container/list"
	"reflect"
	"sync"
	"unsafe"
)

type block struct {
	// pointer address
	addr uint
	// buffer size
	size int
	// distinguish regular (Alloc/Free) and reserved (Reserve/Release)
	// blocks
	res bool
}

func (b *block) read(off int, buf []byte) {
	mem := (*[1 << 30]byte)(unsafe.Pointer(uintptr(b.addr)))[:b.size]
	copy(buf, mem[off:off+len(buf)])
}

func (b *block) write(off int, buf []byte) {
	mem := (*[1 << 30]byte)(unsafe.Pointer(uintptr(b.addr)))[:b.size]
	copy(mem[off:off+len(buf)], buf)
}

// Region represents a memory region allocated for DMA purposes.
type Region struct {
	sync.Mutex

	Start uint
	Size  int

	freeBlocks *list.List
	usedBlocks map[uint]*block
}

var dma *Region

// Init initializes a memory region for DMA buffer allocation, the
// application must guarantee that the passed memory range is never used by
// the Go runtime.
func (dma *Region) Init() {
	b := &block{
		addr: dma.Start,
		size: dma.Size,
	}

	dma.Lock()
	defer dma.Unlock()

	dma.freeBlocks = list.New()
	dma.freeBlocks.PushFront(b)

	dma.usedBlocks = make(map[uint]*block)
}

func align(addr uint, alignment int) uint {
	if alignment <= 4 {
		alignment = 4
	}

	a := uint(alignment)

	if r := addr % a; r != 0 {
		addr += a - r
	}

	return addr
}

// alloc must be called with the region lock held.
func (dma *Region) alloc(size int, alignment int) *block {
	for e := dma.freeBlocks.Front(); e != nil; e = e.Next() {
		free := e.Value.(*block)

		start := align(free.addr, alignment)
		pad := int(start - free.addr)

		if free.size < size+pad {
			continue
		}

		b := &block{addr: start, size: size}

		if rest := free.size - size - pad; rest > 0 {
			free.addr = start + uint(size)
			free.size = rest
		} else {
			dma.freeBlocks.Remove(e)
		}

		if pad > 0 {
			dma.freeBlocks.PushBack(&block{addr: b.addr - uint(pad), size: pad})
		}

		return b
	}

	panic("dma: out of memory")
}

// free must be called with the region lock held.
func (dma *Region) free(b *block) {
	dma.freeBlocks.PushBack(&block{addr: b.addr, size: b.size})
}

// Reserve allocates a slice of bytes for DMA purposes, by placing its data
// within the DMA region, with optional alignment. It returns the slice along
// with its data allocation address. The buffer can be freed up with
// Release().
//
// Reserving buffers with Reserve() allows applications to pre-allocate DMA
// regions, avoiding unnecessary memory copy operations when performance is a
// concern. Reserved buffers cause Alloc() and Read() to return without any
// allocation or memory copy.
func (dma *Region) Reserve(size int, align int) (addr uint, buf []byte) {
	if size == 0 {
		return
	}

	dma.Lock()
	defer dma.Unlock()

	b := dma.alloc(size, align)
	b.res = true

	dma.usedBlocks[b.addr] = b

	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&buf))
	hdr.Data = uintptr(unsafe.Pointer(uintptr(b.addr)))
	hdr.Len = size
	hdr.Cap = hdr.Len

	return b.addr, buf
}

// Reserved returns whether a slice of bytes is allocated within the DMA
// region.
func (dma *Region) Reserved(buf []byte) (res bool, addr uint) {
	if len(buf) == 0 {
		return
	}

	addr = uint(uintptr(unsafe.Pointer(&buf[0])))
	res = addr >= dma.Start && addr+uint(len(buf)) <= dma.Start+uint(dma.Size)

	return
}

// Alloc reserves a memory region for DMA purposes, copying over a buffer and
// returning its allocation address, with optional alignment. The region can
// be freed up with Free().
func (dma *Region) Alloc(buf []byte, align int) (addr uint) {
	size := len(buf)

	if size == 0 {
		return 0
	}

	if res, addr := dma.Reserved(buf); res {
		return addr
	}

	dma.Lock()
	defer dma.Unlock()

	b := dma.alloc(len(buf), align)
	b.write(0, buf)

	dma.usedBlocks[b.addr] = b

	return b.addr
}

// Read reads exactly len(buf) bytes from a memory region address into a
// buffer, the region must have been previously allocated with Alloc().
func (dma *Region) Read(addr uint, off int, buf []byte) {
	size := len(buf)

	if addr == 0 || size == 0 {
		return
	}

	if res, _ := dma.Reserved(buf); res {
		return
	}

	dma.Lock()
	defer dma.Unlock()

	b, ok := dma.usedBlocks[addr]

	if !ok {
		panic("dma: read of unallocated pointer")
	}

	if off+size > b.size {
		panic("dma: invalid read parameters")
	}

	b.read(off, buf)
}

// Write writes buffer contents to a memory region address, the region must
// have been previously allocated with Alloc().
func (dma *Region) Write(addr uint, off int, buf []byte) {
	size := len(buf)

	if addr == 0 || size == 0 {
		return
	}

	dma.Lock()
	defer dma.Unlock()

	b, ok := dma.usedBlocks[addr]

	if !ok {
		return
	}

	if off+size > b.size {
		panic("dma: invalid write parameters")
	}

	b.write(off, buf)
}

// Free frees the memory region stored at the passed address, the region
// must have been previously allocated with Alloc().
func (dma *Region) Free(addr uint) {
	dma.freeBlock(addr, false)
}

// Release frees the memory region stored at the passed address, the region
// must have been previously allocated with Reserve().
func (dma *Region) Release(addr uint) {
	dma.freeBlock(addr, true)
}

func (dma *Region) freeBlock(addr uint, res bool) {
	if addr == 0 {
		return
	}

	dma.Lock()
	defer dma.Unlock()

	b, ok := dma.usedBlocks[addr]

	if !ok {
		return
	}

	if b.res != res {
		return
	}

	dma.free(b)
	delete(dma.usedBlocks, addr)
}

// Init initializes the global memory region for DMA buffer allocation, the
// application must guarantee that the passed memory range is never used by
// the Go runtime.
//
// The global region is used throughout the module for all DMA allocations.
func Init(start uint, size int) {
	dma = &Region{
		Start: start,
		Size:  size,
	}

	dma.Init()
}

// Default returns the global DMA region instance.
func Default() *Region {
	return dma
}

// Alloc is the equivalent of Region.Alloc() on the global DMA region.
func Alloc(buf []byte, align int) (addr uint) {
	return dma.Alloc(buf, align)
}

// Read is the equivalent of Region.Read() on the global DMA region.
func Read(addr uint, off int, buf []byte) {
	dma.Read(addr, off, buf)
}

// Write is the equivalent of Region.Write() on the global DMA region.
func Write(addr uint, off int, buf []byte) {
	dma.Write(addr, off, buf)
}

// Free is the equivalent of Region.Free() on the global DMA region.
func Free(addr uint) {
	dma.Free(addr)
}
