// annotations.go defines the annotation types, argument constants, and parser for the
// webray WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @ray: that drive struct injection, bind group declaration, and resource provider
// registration. The parsed results are stored as Annotation values and consumed by the
// PreProcessor and the binding contract to check a kernel against the renderer's layout.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an annotation within a WGSL comment line.
// Every annotation must appear on a line beginning with "//" followed by this prefix.
const annotationPrefix = "@ray:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects the WGSL source of a registered struct definition
	// into the shader at the annotation site. The struct source is embedded from the
	// corresponding Go GPU type's .wgsl asset file. This annotation does not produce
	// a declaration and is consumed entirely during pre-processing.
	//
	// Syntax: //@ray:include <struct_type>
	//
	// Example: //@ray:include kernel_config
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup generates a WGSL @group/@binding variable declaration
	// and appends an Annotation to the PreProcessor's declarations list. The declaration
	// carries the group index, binding index, and the resolved struct type.
	//
	// Syntax: //@ray:group <group> <binding> <address_space> <var_name> <type>
	//
	// Example: //@ray:group 1 1 storage_read spheres array<sphere>
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider registers a resource provider identity for a group and binding
	// without generating any WGSL output. The WGSL binding declaration remains hand-written
	// in the shader source directly below the annotation. This is used for bindings with raw
	// WGSL types such as storage textures.
	//
	// Syntax:
	//   //@ray:provider <group> <binding> <provider_identity>
	//   //@ray:provider <group> <binding> <provider_identity> <binding_role>
	//
	// Example:
	//   //@ray:provider 0 0 system output_texture
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation represents a single parsed @ray: annotation from a WGSL shader source line.
type Annotation struct {
	// Type identifies which annotation was parsed (include, group, or provider).
	Type AnnotationType

	// Args holds the annotation's arguments. The contents depend on Type:
	//   - include:  [0] = struct type key (e.g. "camera")
	//   - group:    [0] = address space, [1] = var name, [2] = WGSL type key
	//   - provider: [0] = provider identity (e.g. "system"), [1] = binding role (optional)
	Args []AnnotationArg

	// Line is the 1-based line number in the original WGSL source where this annotation
	// was found. Used for error reporting.
	Line int

	// Group is the @group index for group and provider annotations. Nil for include annotations.
	Group *int

	// Binding is the @binding index for group and provider annotations. Nil for include annotations.
	Binding *int
}

// AnnotationArg is a typed string constant used as an argument in annotations.
type AnnotationArg string

// ── Struct type arguments ──────────────────────────────────────────────────────
// Each maps to a Go GPU type with an embedded .wgsl asset file.

const (
	// AnnotationArgImage identifies the Image struct (resolution, samples, bounces).
	// Source: engine/camera/assets/image.wgsl
	AnnotationArgImage AnnotationArg = "image"

	// AnnotationArgCamera identifies the Camera struct (center and defocus disk).
	// Source: engine/camera/assets/camera.wgsl
	AnnotationArgCamera AnnotationArg = "camera"

	// AnnotationArgViewport identifies the Viewport struct (viewport and pixel deltas).
	// Source: engine/camera/assets/viewport.wgsl
	AnnotationArgViewport AnnotationArg = "viewport"

	// AnnotationArgKernelConfig identifies the KernelConfig struct bound at scene binding 0.
	// Source: engine/camera/assets/kernel_config.wgsl
	AnnotationArgKernelConfig AnnotationArg = "kernel_config"

	// AnnotationArgSphere identifies the Sphere struct.
	// Source: engine/scene/assets/sphere.wgsl
	AnnotationArgSphere AnnotationArg = "sphere"

	// AnnotationArgDiffuse identifies the Diffuse material struct.
	// Source: engine/scene/assets/diffuse.wgsl
	AnnotationArgDiffuse AnnotationArg = "diffuse"

	// AnnotationArgMetal identifies the Metal material struct.
	// Source: engine/scene/assets/metal.wgsl
	AnnotationArgMetal AnnotationArg = "metal"

	// AnnotationArgDielectric identifies the Dielectric material struct.
	// Source: engine/scene/assets/dielectric.wgsl
	AnnotationArgDielectric AnnotationArg = "dielectric"

	// AnnotationArgExecutionContext identifies the per-tile ExecutionContext struct.
	// Source: engine/tile/assets/execution_context.wgsl
	AnnotationArgExecutionContext AnnotationArg = "execution_context"
)

// ── Address space arguments ────────────────────────────────────────────────────

const (
	// annotationArgStorageTypeUniform maps to var<uniform> in WGSL.
	annotationArgStorageTypeUniform AnnotationArg = "storage_uniform"

	// annotationArgStorageTypeRead maps to var<storage, read> in WGSL.
	annotationArgStorageTypeRead AnnotationArg = "storage_read"

	// annotationArgStorageTypeReadWrite maps to var<storage, read_write> in WGSL.
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// ── Provider identity arguments ────────────────────────────────────────────────
// These name the owner of a bind group set.

const (
	// AnnotationArgSystem identifies the system set (the output storage texture).
	AnnotationArgSystem AnnotationArg = "system"

	// AnnotationArgScene identifies the scene set (kernel config and scene arrays).
	AnnotationArgScene AnnotationArg = "scene"

	// AnnotationArgExecution identifies the execution set (the per-tile context).
	AnnotationArgExecution AnnotationArg = "execution"
)

// ── Binding role arguments ─────────────────────────────────────────────────────

const (
	// AnnotationArgOutputTexture identifies the write-only storage texture the kernel shades into.
	AnnotationArgOutputTexture AnnotationArg = "output_texture"
)

// validStructTypes lists all AnnotationArg values that are accepted as struct type
// arguments in @ray:include and @ray:group annotations. Each entry must have a
// corresponding registryEntry in the PreProcessor's structRegistry.
var validStructTypes = []AnnotationArg{
	AnnotationArgImage,
	AnnotationArgCamera,
	AnnotationArgViewport,
	AnnotationArgKernelConfig,
	AnnotationArgSphere,
	AnnotationArgDiffuse,
	AnnotationArgMetal,
	AnnotationArgDielectric,
	AnnotationArgExecutionContext,
}

var validAddressSpaces = []AnnotationArg{
	annotationArgStorageTypeUniform,
	annotationArgStorageTypeRead,
	annotationArgStorageTypeReadWrite,
}

var validProviderIdentities = []AnnotationArg{
	AnnotationArgSystem,
	AnnotationArgScene,
	AnnotationArgExecution,
}

var validBindingRoles = []AnnotationArg{
	AnnotationArgOutputTexture,
}

// parseAnnotation attempts to parse a single line of WGSL source as a @ray: annotation.
// Returns nil with no error for lines that do not contain the annotation prefix.
//
// Parameters:
//   - line: the raw WGSL source line to parse
//   - lineNum: the 1-based line number for error reporting
//
// Returns:
//   - *Annotation: the parsed annotation, or nil if the line is not an annotation
//   - error: a descriptive error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @ray annotation", lineNum)
	}

	switch args[0] {
	case string(annotationTypeInclude):
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @ray include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @ray include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: annotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case string(AnnotationTypeBindingGroup):
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @ray group annotation requires exactly five arguments (group, binding, address space, var name, struct type)", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validAddressSpaces, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @ray group annotation", lineNum, args[3])
		}
		typeArg := args[5]
		if inner, ok := strings.CutPrefix(typeArg, "array<"); ok {
			inner = strings.TrimSuffix(inner, ">")
			if !slices.Contains(validStructTypes, AnnotationArg(inner)) {
				return nil, fmt.Errorf("line %d: unknown array element type %q in @ray group annotation", lineNum, inner)
			}
		} else if !slices.Contains(validStructTypes, AnnotationArg(typeArg)) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @ray group annotation", lineNum, typeArg)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	case string(AnnotationTypeProvider):
		if len(args) < 4 || len(args) > 5 {
			return nil, fmt.Errorf("line %d: @ray provider annotation requires three or four arguments (group, binding, provider identity[, binding role])", lineNum)
		}
		groupInt, bindingInt, err := parseGroupBinding(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validProviderIdentities, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown provider identity %q in @ray provider annotation", lineNum, args[3])
		}
		providerArgs := []AnnotationArg{AnnotationArg(args[3])}
		if len(args) == 5 {
			if !slices.Contains(validBindingRoles, AnnotationArg(args[4])) {
				return nil, fmt.Errorf("line %d: unknown binding role %q in @ray provider annotation", lineNum, args[4])
			}
			providerArgs = append(providerArgs, AnnotationArg(args[4]))
		}
		return &Annotation{
			Type:    AnnotationTypeProvider,
			Args:    providerArgs,
			Line:    lineNum,
			Group:   &groupInt,
			Binding: &bindingInt,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @ray annotation type %q", lineNum, args[0])
	}
}

func parseGroupBinding(group, binding string, lineNum int) (int, int, error) {
	g, err := strconv.Atoi(group)
	if err != nil || g < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q in @ray annotation", lineNum, group)
	}
	b, err := strconv.Atoi(binding)
	if err != nil || b < 0 {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q in @ray annotation", lineNum, binding)
	}
	return g, b, nil
}
