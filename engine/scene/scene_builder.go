package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithMaterials registers materials in order. The first material receives MaterialID 0.
//
// Parameters:
//   - materials: the materials to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaterials(materials ...Material) SceneBuilderOption {
	return func(s *scene) {
		s.materials = append(s.materials, materials...)
	}
}

// WithShapes registers shapes in order.
//
// Parameters:
//   - shapes: the shapes to register
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithShapes(shapes ...Shape) SceneBuilderOption {
	return func(s *scene) {
		s.shapes = append(s.shapes, shapes...)
	}
}
