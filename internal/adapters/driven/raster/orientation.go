package raster

import (
	"bytes"
	"encoding/binary"
	"image"
)

// EXIF orientation values. 1 is upright; 5 to 8 swap width and height.
const (
	orientNormal     = 1
	orientFlipH      = 2
	orientRotate180  = 3
	orientFlipV      = 4
	orientTranspose  = 5
	orientRotate90   = 6
	orientTransverse = 7
	orientRotate270  = 8
)

const tagOrientation = 0x0112

var exifHeader = []byte("Exif\x00\x00")

// orientation reads the EXIF orientation of a JPEG. Anything it cannot
// parse counts as upright.
func orientation(data []byte) int {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return orientNormal
	}
	for i := 2; i+4 <= len(data); {
		if data[i] != 0xFF {
			return orientNormal
		}
		marker := data[i+1]
		if marker == 0xFF {
			i++
			continue
		}
		// Start of scan: no more metadata segments.
		if marker == 0xDA || marker == 0xD9 {
			return orientNormal
		}
		size := int(binary.BigEndian.Uint16(data[i+2 : i+4]))
		end := i + 2 + size
		if size < 2 || end > len(data) {
			return orientNormal
		}
		if marker == 0xE1 && bytes.HasPrefix(data[i+4:end], exifHeader) {
			return tiffOrientation(data[i+4+len(exifHeader) : end])
		}
		i = end
	}
	return orientNormal
}

func tiffOrientation(tiff []byte) int {
	if len(tiff) < 8 {
		return orientNormal
	}
	var order binary.ByteOrder
	switch string(tiff[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return orientNormal
	}
	if order.Uint16(tiff[2:4]) != 42 {
		return orientNormal
	}
	ifd := int(order.Uint32(tiff[4:8]))
	if ifd < 8 || ifd+2 > len(tiff) {
		return orientNormal
	}
	count := int(order.Uint16(tiff[ifd : ifd+2]))
	for n := 0; n < count; n++ {
		entry := ifd + 2 + n*12
		if entry+12 > len(tiff) {
			break
		}
		if order.Uint16(tiff[entry:entry+2]) != tagOrientation {
			continue
		}
		v := int(order.Uint16(tiff[entry+8 : entry+10]))
		if v >= orientNormal && v <= orientRotate270 {
			return v
		}
		break
	}
	return orientNormal
}

// swapsAxes reports whether o turns a w×h image into h×w.
func swapsAxes(o int) bool {
	return o >= orientTranspose
}

// orient returns src transformed so it displays upright.
func orient(src *image.RGBA, o int) *image.RGBA {
	if o <= orientNormal || o > orientRotate270 {
		return src
	}
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dw, dh := w, h
	if swapsAxes(o) {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var nx, ny int
			switch o {
			case orientFlipH:
				nx, ny = w-1-x, y
			case orientRotate180:
				nx, ny = w-1-x, h-1-y
			case orientFlipV:
				nx, ny = x, h-1-y
			case orientTranspose:
				nx, ny = y, x
			case orientRotate90:
				nx, ny = h-1-y, x
			case orientTransverse:
				nx, ny = h-1-y, w-1-x
			case orientRotate270:
				nx, ny = y, w-1-x
			}
			dst.SetRGBA(nx, ny, src.RGBAAt(x, y))
		}
	}
	return dst
}
