package ase

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/elliotchance/orderedmap/v3"
)

// Fixed is a signed 16.16 fixed point number.
type Fixed int32

// Float64 returns the value of f as a float.
func (f Fixed) Float64() float64 {
	return float64(f) / 65536
}

func (f Fixed) String() string {
	return fmt.Sprintf("%g", f.Float64())
}

// UUID is a raw 16-byte identifier as stored in the file.
type UUID [16]byte

// ColorDepth is the number of bits per pixel of every cel in a document.
type ColorDepth uint16

const (
	Indexed8    ColorDepth = 8
	Grayscale16 ColorDepth = 16
	RGBA32      ColorDepth = 32
)

// BytesPerPixel returns the pixel stride for the depth, or 0 for an unknown
// depth.
func (d ColorDepth) BytesPerPixel() int {
	switch d {
	case Indexed8:
		return 1
	case Grayscale16:
		return 2
	case RGBA32:
		return 4
	}
	return 0
}

func (d ColorDepth) String() string {
	switch d {
	case Indexed8:
		return "Indexed8"
	case Grayscale16:
		return "Grayscale16"
	case RGBA32:
		return "RGBA32"
	}
	return fmt.Sprintf("ColorDepth(%d)", uint16(d))
}

// HeaderFlags are the document-wide flags from the file header.
type HeaderFlags uint32

const (
	HeaderLayerOpacityValid HeaderFlags = 1 << 0
	HeaderGroupBlendValid   HeaderFlags = 1 << 1
	HeaderLayerUUIDs        HeaderFlags = 1 << 2
)

// Header is the 128-byte file header.
type Header struct {
	FileSize uint32
	Frames   int
	Width    int
	Height   int
	Depth    ColorDepth
	Flags    HeaderFlags
	Speed    uint16 // deprecated; frames carry their own duration

	// TransparentIndex is the palette entry that is fully transparent. It
	// only means something for Indexed8 documents.
	TransparentIndex uint8

	// Colors is the declared palette size, with the legacy 0 already turned
	// into 256.
	Colors int

	PixelWidth, PixelHeight uint8

	GridX, GridY          int16
	GridWidth, GridHeight uint16
}

// LayerOpacityValid reports whether Layer.Opacity should be honoured.
func (h Header) LayerOpacityValid() bool {
	return h.Flags&HeaderLayerOpacityValid != 0
}

// PixelRatio returns the pixel aspect ratio, treating an unset ratio as 1:1.
func (hd Header) PixelRatio() (w, h int) {
	if hd.PixelWidth == 0 || hd.PixelHeight == 0 {
		return 1, 1
	}
	return int(hd.PixelWidth), int(hd.PixelHeight)
}

// Frame is one animation frame and the cels shown in it.
type Frame struct {
	Index    int
	Duration time.Duration
	Cels     []Cel

	// UserData lists every user data chunk found in this frame together with
	// what it was attached to. The same data is also available directly on
	// the annotated entity.
	UserData []Attachment
}

// LayerKind is the type of a layer.
type LayerKind uint16

const (
	LayerNormal LayerKind = iota
	LayerGroup
	LayerTilemap
)

func (k LayerKind) String() string {
	switch k {
	case LayerNormal:
		return "Normal"
	case LayerGroup:
		return "Group"
	case LayerTilemap:
		return "Tilemap"
	}
	return fmt.Sprintf("LayerKind(%d)", uint16(k))
}

// LayerFlags are the per-layer flags.
type LayerFlags uint16

const (
	LayerVisible LayerFlags = 1 << iota
	LayerEditable
	LayerLockMovement
	LayerBackground
	LayerPreferLinkedCels
	LayerCollapsed
	LayerReference
)

func (f LayerFlags) Visible() bool    { return f&LayerVisible != 0 }
func (f LayerFlags) Editable() bool   { return f&LayerEditable != 0 }
func (f LayerFlags) Background() bool { return f&LayerBackground != 0 }
func (f LayerFlags) Reference() bool  { return f&LayerReference != 0 }

// BlendMode is recorded on layers but never applied by this package.
type BlendMode uint16

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
	BlendDarken
	BlendLighten
	BlendColorDodge
	BlendColorBurn
	BlendHardLight
	BlendSoftLight
	BlendDifference
	BlendExclusion
	BlendHue
	BlendSaturation
	BlendColor
	BlendLuminosity
	BlendAddition
	BlendSubtract
	BlendDivide
)

var blendModeNames = [...]string{
	"Normal", "Multiply", "Screen", "Overlay", "Darken", "Lighten",
	"Color Dodge", "Color Burn", "Hard Light", "Soft Light", "Difference",
	"Exclusion", "Hue", "Saturation", "Color", "Luminosity", "Addition",
	"Subtract", "Divide",
}

func (b BlendMode) String() string {
	if int(b) < len(blendModeNames) {
		return blendModeNames[b]
	}
	return fmt.Sprintf("BlendMode(%d)", uint16(b))
}

// Layer is a layer declaration. Layers are stored in declaration order and
// Index equals the position in Document.Layers.
type Layer struct {
	Index int
	Name  string
	Kind  LayerKind

	// TilesetIndex is only meaningful for LayerTilemap.
	TilesetIndex uint32

	// Depth is the child level; Parent is the index of the nearest
	// preceding layer of depth Depth-1, or -1 at the top level.
	Depth  int
	Parent int

	Flags     LayerFlags
	BlendMode BlendMode
	Opacity   uint8
	UUID      *UUID

	UserData *UserData

	// Err wraps ErrUnsupportedVariant when the layer type is unknown. The
	// layer still takes its index so that cels keep pointing at the right
	// layers.
	Err error
}

// CelContent is the pixel payload of a cel: either *ImageContent or
// *TilemapContent.
type CelContent interface {
	// Size returns the content dimensions, in pixels for images and in tiles
	// for tilemaps.
	Size() image.Point

	isCelContent()
}

// ImageContent is a run of pixels in the document's color depth, row by
// row.
type ImageContent struct {
	Width, Height int
	Pixels        []byte
}

func (c *ImageContent) Size() image.Point { return image.Pt(c.Width, c.Height) }
func (*ImageContent) isCelContent()       {}

// TileFlags are the flip and rotation bits of a tilemap entry.
type TileFlags uint8

const (
	TileFlipX TileFlags = 1 << iota
	TileFlipY
	TileFlipDiagonal
)

// Tile is one entry of a tilemap.
type Tile struct {
	ID    uint32
	Flags TileFlags
}

// TilemapContent is a grid of tile references into the tileset of the
// cel's layer.
type TilemapContent struct {
	Width, Height int
	BitsPerTile   int

	IDMask, FlipXMask, FlipYMask, DiagonalMask uint32

	Tiles []Tile
}

func (c *TilemapContent) Size() image.Point { return image.Pt(c.Width, c.Height) }
func (*TilemapContent) isCelContent()       {}

// linkedContent only exists between decoding and resolution.
type linkedContent struct {
	frame int
}

func (*linkedContent) Size() image.Point { return image.Point{} }
func (*linkedContent) isCelContent()     {}

// PreciseBounds is the sub-pixel position and size from a cel extra chunk.
type PreciseBounds struct {
	X, Y, Width, Height Fixed
}

// Cel is the content of one layer in one frame.
type Cel struct {
	Frame int
	Layer int

	// X and Y may be negative or lie outside the canvas.
	X, Y    int
	Opacity uint8
	ZIndex  int16

	// Content is nil when Err is set.
	Content CelContent

	// LinkedFrom is the frame whose cel this one was linked to, or -1.
	LinkedFrom int

	Precise *PreciseBounds

	// Err is set (wrapping ErrCorruptData) when the pixel data was present
	// in the file but could not be recovered.
	Err error

	UserData *UserData
}

// Bounds returns the rectangle covered by an image cel, in canvas
// coordinates.
func (c *Cel) Bounds() image.Rectangle {
	if c.Content == nil {
		return image.Rectangle{Min: image.Pt(c.X, c.Y), Max: image.Pt(c.X, c.Y)}
	}
	return image.Rectangle{Min: image.Pt(c.X, c.Y), Max: image.Pt(c.X, c.Y).Add(c.Content.Size())}
}

// PaletteEntry is one palette color.
type PaletteEntry struct {
	Color color.NRGBA
	Name  string
}

// Palette is indexed by color index.
type Palette []PaletteEntry

// ColorPalette converts p to a color.Palette.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, e := range p {
		cp[i] = e.Color
	}
	return cp
}

// LoopDirection is the playback direction of a tag.
type LoopDirection uint8

const (
	Forward LoopDirection = iota
	Reverse
	PingPong
	PingPongReverse
)

func (d LoopDirection) String() string {
	switch d {
	case Forward:
		return "Forward"
	case Reverse:
		return "Reverse"
	case PingPong:
		return "PingPong"
	case PingPongReverse:
		return "PingPongReverse"
	}
	return fmt.Sprintf("LoopDirection(%d)", uint8(d))
}

// Tag names an inclusive frame range.
type Tag struct {
	Name      string
	From, To  int
	Direction LoopDirection
	// Repeat is the number of plays; 0 means forever.
	Repeat uint16
	// Color is deprecated in the format; user data color supersedes it.
	Color color.RGBA

	UserData *UserData
}

// SliceFlags tell which optional parts slice keys carry.
type SliceFlags uint32

const (
	SliceNinePatch SliceFlags = 1 << iota
	SlicePivot
)

// SliceKey is the state of a slice from Frame onwards.
type SliceKey struct {
	Frame  int
	Bounds image.Rectangle
	Center *image.Rectangle // nine-patch center, relative to Bounds
	Pivot  *image.Point     // relative to Bounds
}

// Slice is a named rectangle that may change over time.
type Slice struct {
	Name  string
	Flags SliceFlags
	Keys  []SliceKey

	UserData *UserData
}

// KeyAt returns the latest key at or before frame.
func (s *Slice) KeyAt(frame int) (SliceKey, bool) {
	var best SliceKey
	found := false
	for _, k := range s.Keys {
		if k.Frame <= frame && (!found || k.Frame >= best.Frame) {
			best = k
			found = true
		}
	}
	return best, found
}

// TilesetFlags describe where a tileset's tiles come from.
type TilesetFlags uint32

const (
	TilesetExternal TilesetFlags = 1 << iota
	TilesetEmbedded
	TilesetZeroIsEmpty
	TilesetMatchFlipX
	TilesetMatchFlipY
	TilesetMatchDiagonal
)

// ExternalTileset points at a tileset in another file. It is not followed.
type ExternalTileset struct {
	FileID    uint32
	TilesetID uint32
}

// Tileset is a set of equally sized tiles.
type Tileset struct {
	ID         uint32
	Flags      TilesetFlags
	Count      int
	TileWidth  int
	TileHeight int
	BaseIndex  int16
	Name       string

	External *ExternalTileset

	// Pixels is a strip TileWidth wide and Count*TileHeight tall, present
	// only for embedded tilesets that decompressed cleanly.
	Pixels []byte
	Err    error

	UserData *UserData
	// TileUserData[i] belongs to tile i. It ends at the last tile that has
	// user data.
	TileUserData []*UserData
}

// UserData is text, color and properties attached to another entity.
type UserData struct {
	Text  *string
	Color *color.NRGBA

	// Properties maps an extension (0 for plain user properties, otherwise
	// an external file id) to its properties in file order.
	Properties map[uint32]*orderedmap.OrderedMap[string, any]
}

// AttachmentTarget says what a user data chunk was attached to.
type AttachmentTarget int

const (
	AttachedToNothing AttachmentTarget = iota
	AttachedToSprite
	AttachedToLayer
	AttachedToCel
	AttachedToTag
	AttachedToSlice
	AttachedToTileset
	AttachedToTile
)

func (t AttachmentTarget) String() string {
	switch t {
	case AttachedToSprite:
		return "sprite"
	case AttachedToLayer:
		return "layer"
	case AttachedToCel:
		return "cel"
	case AttachedToTag:
		return "tag"
	case AttachedToSlice:
		return "slice"
	case AttachedToTileset:
		return "tileset"
	case AttachedToTile:
		return "tile"
	}
	return "nothing"
}

// Attachment records one user data chunk of a frame. Index identifies the
// target within its kind: a layer, tag, slice or tileset index, the layer
// index of a cel, or the tile number.
type Attachment struct {
	Chunk  int
	Target AttachmentTarget
	Index  int
	Data   *UserData
}

// ColorProfileType is the kind of color profile.
type ColorProfileType uint16

const (
	ProfileNone ColorProfileType = iota
	ProfileSRGB
	ProfileICC
)

// ColorProfile is kept for completeness; it is not applied to pixels.
type ColorProfile struct {
	Type       ColorProfileType
	FixedGamma bool
	Gamma      Fixed
	ICC        []byte
}

// ExternalFileType is what an external file entry refers to.
type ExternalFileType uint8

const (
	ExternalPalette ExternalFileType = iota
	ExternalTilesetFile
	ExternalPropertiesExtension
	ExternalTileManagement
)

// ExternalFile is one entry of an external files chunk.
type ExternalFile struct {
	ID   uint32
	Type ExternalFileType
	Name string
}

// Mask is a deprecated selection mask chunk.
type Mask struct {
	X, Y          int16
	Width, Height uint16
	Name          string
	Bitmap        []byte // one bit per pixel, rows padded to bytes
}
