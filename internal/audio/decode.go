package audio

import (
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	fperrors "github.com/zfogg/echoprint/internal/errors"
)

// DecodedFile is the raw output of reading an audio file off disk before
// downmixing or resampling: interleaved samples in [-1, 1], channel count,
// and native sample rate.
type DecodedFile struct {
	Interleaved []float64
	Channels    int
	SampleRate  int
}

// DecodeWAV reads a WAV file with go-audio/wav. It is the only file decoder
// in this module: the indexer walker passes every recognized file to it, so
// non-WAV files fail here with a DecodeError.
func DecodeWAV(path string) (DecodedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return DecodedFile{}, fperrors.Wrap(fperrors.DecodeError, "cannot open file", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return DecodedFile{}, fperrors.New(fperrors.DecodeError, "not a valid WAV file: "+path)
	}

	duration, err := decoder.Duration()
	if err != nil {
		return DecodedFile{}, fperrors.Wrap(fperrors.DecodeError, "cannot determine duration", err)
	}

	totalSamples := int(duration.Seconds() * float64(decoder.SampleRate) * float64(decoder.NumChans))
	if totalSamples == 0 {
		return DecodedFile{Interleaved: nil, Channels: int(decoder.NumChans), SampleRate: int(decoder.SampleRate)}, nil
	}

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: int(decoder.NumChans),
			SampleRate:  int(decoder.SampleRate),
		},
		Data:           make([]int, totalSamples),
		SourceBitDepth: int(decoder.BitDepth),
	}

	if _, err := decoder.PCMBuffer(buf); err != nil {
		return DecodedFile{}, fperrors.Wrap(fperrors.DecodeError, "cannot read PCM samples", err)
	}

	maxVal := float64(int(1) << (uint(decoder.BitDepth) - 1))
	samples := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float64(v) / maxVal
	}

	return DecodedFile{
		Interleaved: samples,
		Channels:    int(decoder.NumChans),
		SampleRate:  int(decoder.SampleRate),
	}, nil
}
