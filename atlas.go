package lodkit

import (
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/math/f32"
)

// AtlasID identifies one texture atlas built by the asset system.
type AtlasID string

func NewAtlasID() AtlasID { return AtlasID(uuid.NewString()) }

// AtlasRegion is the UV sub-rectangle a texture occupies inside its
// atlas.
type AtlasRegion struct {
	Atlas AtlasID
	UVMin f32.Vec2
	UVMax f32.Vec2
}

// AtlasRegistry records which textures live in which atlas and which
// material samples which texture. The batch optimizer consults it to
// merge draws whose materials only differ by atlas region. Packing
// itself is the asset system's job; this is bookkeeping only.
type AtlasRegistry struct {
	mu        sync.RWMutex
	regions   map[TextureHandle]AtlasRegion
	materials map[MaterialHandle]TextureHandle
}

func NewAtlasRegistry() *AtlasRegistry {
	return &AtlasRegistry{
		regions:   make(map[TextureHandle]AtlasRegion),
		materials: make(map[MaterialHandle]TextureHandle),
	}
}

// AssignTexture places a texture inside an atlas.
func (r *AtlasRegistry) AssignTexture(tex TextureHandle, region AtlasRegion) {
	r.mu.Lock()
	r.regions[tex] = region
	r.mu.Unlock()
}

// BindMaterial records the texture a material samples.
func (r *AtlasRegistry) BindMaterial(mat MaterialHandle, tex TextureHandle) {
	r.mu.Lock()
	r.materials[mat] = tex
	r.mu.Unlock()
}

// Region looks up the atlas placement of a texture.
func (r *AtlasRegistry) Region(tex TextureHandle) (AtlasRegion, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regions[tex]
	return reg, ok
}

// sharedAtlas reports whether both materials sample textures placed
// in the same atlas. Unknown materials or textures never share.
func (r *AtlasRegistry) sharedAtlas(a, b MaterialHandle) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	texA, ok := r.materials[a]
	if !ok {
		return false
	}
	texB, ok := r.materials[b]
	if !ok {
		return false
	}
	regA, ok := r.regions[texA]
	if !ok {
		return false
	}
	regB, ok := r.regions[texB]
	if !ok {
		return false
	}
	return regA.Atlas == regB.Atlas
}
