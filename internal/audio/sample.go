package audio

import (
	"encoding/binary"
	"math"

	fperrors "github.com/zfogg/echoprint/internal/errors"
)

// Format is a closed sum type over the two raw sample encodings this system
// accepts on the wire. The source this was distilled from branches at
// runtime on a string "float32"|"int16"; that dispatch is replaced here with
// a typed enum and a Decode method, so an unrecognized literal is caught at
// the parse boundary instead of propagating as a string through the pipeline.
type Format int

const (
	// FormatUnknown is the zero value so a zero-initialized Format is never
	// silently treated as a valid encoding.
	FormatUnknown Format = iota
	FormatFloat32
	FormatInt16
)

// ParseFormat maps the wire literal to a Format, per the protocol in §6.
func ParseFormat(literal string) (Format, error) {
	switch literal {
	case "float32":
		return FormatFloat32, nil
	case "int16":
		return FormatInt16, nil
	default:
		return FormatUnknown, fperrors.New(fperrors.UnsupportedFmt, "unknown sample type literal: "+literal)
	}
}

// SampleSize returns the byte width of one sample in this format.
func (f Format) SampleSize() int {
	switch f {
	case FormatFloat32:
		return 4
	case FormatInt16:
		return 2
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatFloat32:
		return "float32"
	case FormatInt16:
		return "int16"
	default:
		return "unknown"
	}
}

// Decode interprets raw little-endian bytes as a slice of samples in this
// format, converting to float64 in [-1, 1]. Multi-channel frames are left
// interleaved; downmixing is the caller's job (see Downmix).
func (f Format) Decode(data []byte) ([]float64, error) {
	size := f.SampleSize()
	if size == 0 {
		return nil, fperrors.New(fperrors.UnsupportedFmt, "cannot decode unknown sample format")
	}
	n := len(data) / size
	out := make([]float64, n)

	switch f {
	case FormatFloat32:
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
			out[i] = float64(math.Float32frombits(bits))
		}
	case FormatInt16:
		const maxInt16 = 32768.0
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
			out[i] = float64(v) / maxInt16
		}
	}
	return out, nil
}
