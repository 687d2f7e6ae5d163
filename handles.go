package lodkit

import (
	"sync"

	"github.com/google/uuid"
)

// ObjectID identifies a registered renderable for its whole lifetime.
// The host engine supplies it (an entity id works fine); the pipeline
// never mints object ids itself.
type ObjectID uint64

// Handles for GPU-side resources owned by the host's asset system.
// This package only passes them through and compares them; it never
// dereferences or loads anything behind them.
type (
	MeshHandle     string
	MaterialHandle string
	TextureHandle  string
)

func NewMeshHandle() MeshHandle         { return MeshHandle(uuid.NewString()) }
func NewMaterialHandle() MaterialHandle { return MaterialHandle(uuid.NewString()) }
func NewTextureHandle() TextureHandle   { return TextureHandle(uuid.NewString()) }

// MeshVariants maps a detail level index to the mesh to draw at that
// level. Levels without an entry fall back to the nearest populated
// one at resolution time.
type MeshVariants map[int]MeshHandle

func (v MeshVariants) clone() MeshVariants {
	if v == nil {
		return nil
	}
	out := make(MeshVariants, len(v))
	for k, m := range v {
		out[k] = m
	}
	return out
}

// MeshLibrary tracks shared ownership of mesh resources across all
// objects referencing them. The pipeline retains every variant on
// object registration and releases on deregistration; when the last
// reference drops, the optional evict callback tells the asset system
// the mesh is no longer needed here.
type MeshLibrary struct {
	mu      sync.Mutex
	refs    map[MeshHandle]int
	onEvict func(MeshHandle)
}

func NewMeshLibrary(onEvict func(MeshHandle)) *MeshLibrary {
	return &MeshLibrary{
		refs:    make(map[MeshHandle]int),
		onEvict: onEvict,
	}
}

func (l *MeshLibrary) Retain(h MeshHandle) {
	if h == "" {
		return
	}
	l.mu.Lock()
	l.refs[h]++
	l.mu.Unlock()
}

func (l *MeshLibrary) Release(h MeshHandle) {
	if h == "" {
		return
	}
	l.mu.Lock()
	n := l.refs[h] - 1
	if n <= 0 {
		delete(l.refs, h)
	} else {
		l.refs[h] = n
	}
	l.mu.Unlock()

	if n == 0 && l.onEvict != nil {
		l.onEvict(h)
	}
}

// RefCount reports how many registered objects reference the mesh.
func (l *MeshLibrary) RefCount(h MeshHandle) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refs[h]
}
