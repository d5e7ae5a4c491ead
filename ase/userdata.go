package ase

import (
	"image"
	"image/color"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const (
	userDataText       = 1 << 0
	userDataColor      = 1 << 1
	userDataProperties = 1 << 2
)

// Property value type codes.
const (
	propBool   = 0x0001
	propInt8   = 0x0002
	propUint8  = 0x0003
	propInt16  = 0x0004
	propUint16 = 0x0005
	propInt32  = 0x0006
	propUint32 = 0x0007
	propInt64  = 0x0008
	propUint64 = 0x0009
	propFixed  = 0x000A
	propFloat  = 0x000B
	propDouble = 0x000C
	propString = 0x000D
	propPoint  = 0x000E
	propSize   = 0x000F
	propRect   = 0x0010
	propVector = 0x0011
	propMap    = 0x0012
	propUUID   = 0x0013
)

// maxPropertyDepth bounds nesting of vectors and maps.
const maxPropertyDepth = 32

func (d *decoder) decodeUserData() chunk {
	c := d.c
	flags := c.u32()
	var ud UserData
	if flags&userDataText != 0 {
		s := c.str()
		ud.Text = &s
	}
	if flags&userDataColor != 0 {
		col := color.NRGBA{R: c.u8(), G: c.u8(), B: c.u8(), A: c.u8()}
		ud.Color = &col
	}
	if flags&userDataProperties != 0 && c.err == nil {
		if err := d.decodeProperties(&ud); err != nil && c.err == nil {
			// Keep whatever was read before the unknown value; the rest of
			// the chunk cannot be interpreted.
			glog.Warningf("ase: user data properties truncated: %v", err)
		}
	}
	return userDataChunk{data: ud}
}

func (d *decoder) decodeProperties(ud *UserData) error {
	c := d.c
	c.skip(4) // total size in bytes
	maps := c.u32()
	for i := uint32(0); i < maps && c.err == nil; i++ {
		key := c.u32()
		if ud.Properties == nil {
			ud.Properties = make(map[uint32]*orderedmap.OrderedMap[string, any])
		}
		m := orderedmap.NewOrderedMap[string, any]()
		ud.Properties[key] = m
		if err := d.decodePropertyMap(m, 0); err != nil {
			return err
		}
	}
	return c.err
}

func (d *decoder) decodePropertyMap(m *orderedmap.OrderedMap[string, any], depth int) error {
	c := d.c
	n := c.u32()
	for i := uint32(0); i < n && c.err == nil; i++ {
		name := c.str()
		v, err := d.decodePropertyValue(c.u16(), depth)
		if err != nil {
			return errors.Wrapf(err, "property %q", name)
		}
		m.Set(name, v)
	}
	return c.err
}

func (d *decoder) decodePropertyValue(typ uint16, depth int) (any, error) {
	c := d.c
	if depth > maxPropertyDepth {
		return nil, errors.Wrapf(ErrUnsupportedVariant, "properties nested deeper than %d", maxPropertyDepth)
	}
	switch typ {
	case propBool:
		return c.u8() != 0, nil
	case propInt8:
		return int64(c.i8()), nil
	case propUint8:
		return int64(c.u8()), nil
	case propInt16:
		return int64(c.i16()), nil
	case propUint16:
		return int64(c.u16()), nil
	case propInt32:
		return int64(c.i32()), nil
	case propUint32:
		return int64(c.u32()), nil
	case propInt64:
		return c.i64(), nil
	case propUint64:
		return c.u64(), nil
	case propFixed:
		return c.fixed(), nil
	case propFloat:
		return float64(c.f32()), nil
	case propDouble:
		return c.f64(), nil
	case propString:
		return c.str(), nil
	case propPoint, propSize:
		return image.Pt(int(c.i32()), int(c.i32())), nil
	case propRect:
		x, y := int(c.i32()), int(c.i32())
		w, h := int(c.i32()), int(c.i32())
		return image.Rect(x, y, x+w, y+h), nil
	case propVector:
		n := c.u32()
		elem := c.u16()
		var vec []any
		for i := uint32(0); i < n && c.err == nil; i++ {
			t := elem
			if t == 0 {
				t = c.u16()
			}
			v, err := d.decodePropertyValue(t, depth+1)
			if err != nil {
				return nil, err
			}
			vec = append(vec, v)
		}
		return vec, nil
	case propMap:
		m := orderedmap.NewOrderedMap[string, any]()
		if err := d.decodePropertyMap(m, depth+1); err != nil {
			return nil, err
		}
		return m, nil
	case propUUID:
		var u UUID
		c.fill(u[:])
		return u, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedVariant, "property type 0x%04x", typ)
}
