package sound

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

type wavFormat struct {
	sampleRate int
	channels   int
	bitDepth   int
}

// parseWAV extracts the format chunk and raw PCM samples from a RIFF/WAVE
// file. Only uncompressed PCM is supported; the catalog assets are shipped
// in that form.
func parseWAV(data []byte) (wavFormat, []byte, error) {
	r := bytes.NewReader(data)

	var riff [4]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil || string(riff[:]) != "RIFF" {
		return wavFormat{}, nil, errors.New("not a RIFF file")
	}
	if _, err := r.Seek(4, io.SeekCurrent); err != nil { // file size
		return wavFormat{}, nil, err
	}
	var wave [4]byte
	if _, err := io.ReadFull(r, wave[:]); err != nil || string(wave[:]) != "WAVE" {
		return wavFormat{}, nil, errors.New("not a WAVE file")
	}

	var format wavFormat
	haveFormat := false

	for {
		var chunkID [4]byte
		if _, err := io.ReadFull(r, chunkID[:]); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return wavFormat{}, nil, err
		}
		var chunkSize uint32
		if err := binary.Read(r, binary.LittleEndian, &chunkSize); err != nil {
			return wavFormat{}, nil, err
		}

		switch string(chunkID[:]) {
		case "fmt ":
			var fmtChunk struct {
				AudioFormat   uint16
				NumChannels   uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if err := binary.Read(r, binary.LittleEndian, &fmtChunk); err != nil {
				return wavFormat{}, nil, err
			}
			if fmtChunk.AudioFormat != 1 {
				return wavFormat{}, nil, fmt.Errorf("unsupported WAV encoding %d", fmtChunk.AudioFormat)
			}
			format = wavFormat{
				sampleRate: int(fmtChunk.SampleRate),
				channels:   int(fmtChunk.NumChannels),
				bitDepth:   int(fmtChunk.BitsPerSample),
			}
			haveFormat = true
			if extra := int64(chunkSize) - 16; extra > 0 {
				if _, err := r.Seek(extra, io.SeekCurrent); err != nil {
					return wavFormat{}, nil, err
				}
			}
		case "data":
			if !haveFormat {
				return wavFormat{}, nil, errors.New("WAV data chunk before fmt chunk")
			}
			samples := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, samples); err != nil {
				return wavFormat{}, nil, fmt.Errorf("truncated WAV data: %w", err)
			}
			return format, samples, nil
		default:
			if _, err := r.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return wavFormat{}, nil, err
			}
		}
	}

	return wavFormat{}, nil, errors.New("WAV data chunk not found")
}
