package scene

import (
	"fmt"

	"github.com/Carmen-Shannon/webray-go/common"
	"github.com/Carmen-Shannon/webray-go/engine/camera"
	"github.com/Carmen-Shannon/webray-go/engine/settings"
)

// Serialized type tags. They match the tags written by the scene editor.
const (
	TypeSphere         = "d_sphere"
	TypeMatDiffuse     = "d_mat_diffuse"
	TypeMatMetal       = "d_mat_metal"
	TypeMatDielectric  = "d_mat_dielectric"
	TypeTileSizeFull   = "d_tile_size_full"
	TypeTileSizeSquare = "d_tile_size"
)

// Description is the serialized form of a render job: the scene, its camera and its render settings.
// It round-trips through JSON, YAML and TOML, see Load and Save.
type Description struct {
	Objects        []ObjectDescription       `json:"objects" yaml:"objects" toml:"objects"`
	Materials      []MaterialDescription     `json:"materials" yaml:"materials" toml:"materials"`
	Camera         CameraDescription         `json:"camera" yaml:"camera" toml:"camera"`
	RenderSettings RenderSettingsDescription `json:"render_settings" yaml:"render_settings" toml:"render_settings"`
}

// ObjectDescription is a serialized shape. MaterialID refers to a MaterialDescription.ID, not a position.
type ObjectDescription struct {
	ID         uint32           `json:"id" yaml:"id" toml:"id"`
	Name       string           `json:"name" yaml:"name" toml:"name"`
	MaterialID uint32           `json:"material_id" yaml:"material_id" toml:"material_id"`
	Type       ShapeDescription `json:"type" yaml:"type" toml:"type"`
}

// ShapeDescription is the tagged shape payload. Type is TypeSphere.
type ShapeDescription struct {
	Type     string     `json:"type" yaml:"type" toml:"type"`
	Position [3]float32 `json:"position" yaml:"position" toml:"position"`
	Radius   float32    `json:"radius" yaml:"radius" toml:"radius"`
}

// MaterialDescription is a serialized material with a user assigned identifier.
type MaterialDescription struct {
	ID   uint32                  `json:"id" yaml:"id" toml:"id"`
	Name string                  `json:"name" yaml:"name" toml:"name"`
	Type MaterialTypeDescription `json:"type" yaml:"type" toml:"type"`
}

// MaterialTypeDescription is the tagged material payload.
// Diffuse and metal materials take either Color (linear RGB) or Hex ("#rrggbb" or "#rgb"); Color wins when both are set.
type MaterialTypeDescription struct {
	Type      string    `json:"type" yaml:"type" toml:"type"`
	Color     []float32 `json:"color,omitempty" yaml:"color,omitempty" toml:"color,omitempty"`
	Hex       string    `json:"hex,omitempty" yaml:"hex,omitempty" toml:"hex,omitempty"`
	Roughness float32   `json:"roughness,omitempty" yaml:"roughness,omitempty" toml:"roughness,omitempty"`
	IOR       float32   `json:"ior,omitempty" yaml:"ior,omitempty" toml:"ior,omitempty"`
}

// CameraDescription is the serialized camera.
type CameraDescription struct {
	LookFrom    [3]float32 `json:"look_from" yaml:"look_from" toml:"look_from"`
	LookAt      [3]float32 `json:"look_at" yaml:"look_at" toml:"look_at"`
	Up          [3]float32 `json:"v_up" yaml:"v_up" toml:"v_up"`
	VerticalFov float32    `json:"v_fov" yaml:"v_fov" toml:"v_fov"`
	DofAngle    float32    `json:"dof_angle" yaml:"dof_angle" toml:"dof_angle"`
	DofDistance float32    `json:"dof_distance" yaml:"dof_distance" toml:"dof_distance"`
}

// RenderSettingsDescription is the serialized render settings.
type RenderSettingsDescription struct {
	Width    uint32              `json:"width" yaml:"width" toml:"width"`
	Height   uint32              `json:"height" yaml:"height" toml:"height"`
	Samples  uint32              `json:"samples" yaml:"samples" toml:"samples"`
	Bounces  uint32              `json:"bounces" yaml:"bounces" toml:"bounces"`
	TileSize TileSizeDescription `json:"tile_size" yaml:"tile_size" toml:"tile_size"`
}

// TileSizeDescription is the tagged tile mode. Type is TypeTileSizeFull or TypeTileSizeSquare.
type TileSizeDescription struct {
	Type string `json:"type" yaml:"type" toml:"type"`
	Size uint32 `json:"size,omitempty" yaml:"size,omitempty" toml:"size,omitempty"`
}

// Build converts the description into an in-process Scene and its settings.
// Materials are registered in description order, so description order determines GPU indices.
//
// Parameters:
//   - name: the name given to the built scene
//
// Returns:
//   - Scene: the built scene
//   - settings.RenderSettings: the decoded render settings
//   - camera.Settings: the decoded camera settings
//   - error: a *common.ConfigError for unknown type tags, missing colors, duplicate ids or unresolved material ids
func (d *Description) Build(name string) (Scene, settings.RenderSettings, camera.Settings, error) {
	s := NewScene(name)
	ids := make(map[uint32]MaterialID, len(d.Materials))

	for i, md := range d.Materials {
		field := fmt.Sprintf("materials[%d]", i)
		if _, dup := ids[md.ID]; dup {
			return nil, settings.RenderSettings{}, camera.Settings{}, common.NewConfigError(common.ErrInvalidMaterial, field+".id", "duplicate material id %d", md.ID)
		}
		m, err := md.Type.material(field)
		if err != nil {
			return nil, settings.RenderSettings{}, camera.Settings{}, err
		}
		ids[md.ID] = s.RegisterMaterial(m)
	}

	for i, od := range d.Objects {
		field := fmt.Sprintf("objects[%d]", i)
		mid, ok := ids[od.MaterialID]
		if !ok {
			return nil, settings.RenderSettings{}, camera.Settings{}, common.NewConfigError(common.ErrUnresolvedMaterial, field+".material_id", "material id %d is not described", od.MaterialID)
		}
		switch od.Type.Type {
		case TypeSphere:
			s.RegisterShape(Sphere{Center: od.Type.Position, Radius: od.Type.Radius, Material: mid})
		default:
			return nil, settings.RenderSettings{}, camera.Settings{}, common.NewConfigError(common.ErrInvalidShape, field+".type", "unknown object type %q", od.Type.Type)
		}
	}

	rs, err := d.RenderSettings.settings()
	if err != nil {
		return nil, settings.RenderSettings{}, camera.Settings{}, err
	}

	cs := camera.Settings{
		LookFrom:        d.Camera.LookFrom,
		LookAt:          d.Camera.LookAt,
		Up:              d.Camera.Up,
		VerticalFov:     d.Camera.VerticalFov,
		DefocusAngle:    d.Camera.DofAngle,
		DefocusDistance: d.Camera.DofDistance,
	}

	return s, rs, cs, nil
}

func (md MaterialTypeDescription) material(field string) (Material, error) {
	switch md.Type {
	case TypeMatDiffuse:
		c, err := md.color(field)
		if err != nil {
			return nil, err
		}
		return Diffuse{Albedo: c}, nil
	case TypeMatMetal:
		c, err := md.color(field)
		if err != nil {
			return nil, err
		}
		return Metal{Albedo: c, Roughness: md.Roughness}, nil
	case TypeMatDielectric:
		return Dielectric{IOR: md.IOR}, nil
	default:
		return nil, common.NewConfigError(common.ErrInvalidMaterial, field+".type", "unknown material type %q", md.Type)
	}
}

func (md MaterialTypeDescription) color(field string) (common.Vec3, error) {
	switch {
	case len(md.Color) == 3:
		return common.Vec3{md.Color[0], md.Color[1], md.Color[2]}, nil
	case len(md.Color) != 0:
		return common.Vec3{}, common.NewConfigError(common.ErrInvalidMaterial, field+".color", "expected 3 components, got %d", len(md.Color))
	case md.Hex != "":
		c, err := common.ParseHexColor(md.Hex)
		if err != nil {
			return common.Vec3{}, &common.ConfigError{Field: field + ".hex", Reason: err.Error(), Err: common.ErrInvalidMaterial}
		}
		return c, nil
	default:
		return common.Vec3{}, common.NewConfigError(common.ErrInvalidMaterial, field+".color", "a color or hex value is required")
	}
}

func (rd RenderSettingsDescription) settings() (settings.RenderSettings, error) {
	rs := settings.RenderSettings{
		Width:   rd.Width,
		Height:  rd.Height,
		Samples: rd.Samples,
		Bounces: rd.Bounces,
	}
	switch rd.TileSize.Type {
	case TypeTileSizeFull:
		rs.Tile = settings.FullTile()
	case TypeTileSizeSquare:
		rs.Tile = settings.SquareTile(rd.TileSize.Size)
	default:
		return settings.RenderSettings{}, common.NewConfigError(common.ErrInvalidSettings, "render_settings.tile_size.type", "unknown tile size type %q", rd.TileSize.Type)
	}
	return rs, nil
}

// Describe builds the serialized form of a scene and its settings.
// Material ids are registration positions and object ids are shape positions.
//
// Parameters:
//   - s: the scene to describe
//   - rs: the render settings
//   - cs: the camera settings
//
// Returns:
//   - *Description: the description
//   - error: a *common.ConfigError for a nil or unsupported material or shape
func Describe(s Scene, rs settings.RenderSettings, cs camera.Settings) (*Description, error) {
	materials, shapes := s.contents()

	d := &Description{
		Objects:   make([]ObjectDescription, 0, len(shapes)),
		Materials: make([]MaterialDescription, 0, len(materials)),
		Camera: CameraDescription{
			LookFrom:    cs.LookFrom,
			LookAt:      cs.LookAt,
			Up:          cs.Up,
			VerticalFov: cs.VerticalFov,
			DofAngle:    cs.DefocusAngle,
			DofDistance: cs.DefocusDistance,
		},
		RenderSettings: RenderSettingsDescription{
			Width:   rs.Width,
			Height:  rs.Height,
			Samples: rs.Samples,
			Bounces: rs.Bounces,
		},
	}

	if rs.Tile.Kind == settings.TileKindSquare {
		d.RenderSettings.TileSize = TileSizeDescription{Type: TypeTileSizeSquare, Size: rs.Tile.Size}
	} else {
		d.RenderSettings.TileSize = TileSizeDescription{Type: TypeTileSizeFull}
	}

	for i, m := range materials {
		m, err := materialValue(m, fmt.Sprintf("materials[%d]", i))
		if err != nil {
			return nil, err
		}
		md := MaterialDescription{ID: uint32(i), Name: fmt.Sprintf("%s_%d", m.Kind(), i)}
		switch mat := m.(type) {
		case Diffuse:
			md.Type = MaterialTypeDescription{Type: TypeMatDiffuse, Color: mat.Albedo[:]}
		case Metal:
			md.Type = MaterialTypeDescription{Type: TypeMatMetal, Color: mat.Albedo[:], Roughness: mat.Roughness}
		case Dielectric:
			md.Type = MaterialTypeDescription{Type: TypeMatDielectric, IOR: mat.IOR}
		}
		d.Materials = append(d.Materials, md)
	}

	for i, sh := range shapes {
		sh, err := shapeValue(sh, fmt.Sprintf("shapes[%d]", i))
		if err != nil {
			return nil, err
		}
		switch shape := sh.(type) {
		case Sphere:
			d.Objects = append(d.Objects, ObjectDescription{
				ID:         uint32(i),
				Name:       fmt.Sprintf("sphere_%d", i),
				MaterialID: uint32(shape.Material),
				Type:       ShapeDescription{Type: TypeSphere, Position: shape.Center, Radius: shape.Radius},
			})
		}
	}

	return d, nil
}
