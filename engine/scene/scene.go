// Package scene holds the authoring-time scene graph and compiles it into the flat,
// structure-of-arrays layout consumed by the ray tracing kernel.
package scene

import (
	"slices"
	"sync"
)

type scene struct {
	mu *sync.RWMutex

	name      string
	materials []Material
	shapes    []Shape
}

// Scene is an ordered collection of materials and shapes authored before a render.
// Materials are identified by their registration position, so registration order alone
// determines the GPU side indices produced by Compile.
type Scene interface {
	// Name returns the name of the scene.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// RegisterMaterial appends a material and returns its identifier.
	//
	// Parameters:
	//   - m: the material to register
	//
	// Returns:
	//   - MaterialID: the registration position of the material
	RegisterMaterial(m Material) MaterialID

	// RegisterShape appends a shape. The shape's material reference is not checked until Compile.
	//
	// Parameters:
	//   - s: the shape to register
	RegisterShape(s Shape)

	// Material looks up a registered material.
	//
	// Parameters:
	//   - id: the material identifier
	//
	// Returns:
	//   - Material: the registered material, or nil
	//   - bool: true if id refers to a registered material
	Material(id MaterialID) (Material, bool)

	// Materials returns a snapshot of the registered materials in registration order.
	//
	// Returns:
	//   - []Material: a copy of the material list
	Materials() []Material

	// Shapes returns a snapshot of the registered shapes in registration order.
	//
	// Returns:
	//   - []Shape: a copy of the shape list
	Shapes() []Shape

	// contents returns copies of both lists taken under one read lock.
	contents() ([]Material, []Shape)
}

var _ Scene = &scene{}

// NewScene creates an empty Scene and applies the given options in order.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to populate the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:   &sync.RWMutex{},
		name: name,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) RegisterMaterial(m Material) MaterialID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = append(s.materials, m)
	return MaterialID(len(s.materials) - 1)
}

func (s *scene) RegisterShape(sh Shape) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shapes = append(s.shapes, sh)
}

func (s *scene) Material(id MaterialID) (Material, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(id) >= len(s.materials) {
		return nil, false
	}
	return s.materials[id], true
}

func (s *scene) Materials() []Material {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.materials)
}

func (s *scene) Shapes() []Shape {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.shapes)
}

func (s *scene) contents() ([]Material, []Shape) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.materials), slices.Clone(s.shapes)
}
