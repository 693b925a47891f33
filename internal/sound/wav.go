package sound

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrNotWAV = errors.New("not a RIFF/WAVE file")

// Format describes PCM sample layout.
type Format struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// ParseWAV returns the format and raw PCM frames of a 16-bit PCM WAV file.
func ParseWAV(data []byte) (Format, []byte, error) {
	var f Format
	r := bytes.NewReader(data)
	var hdr [12]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return f, nil, ErrNotWAV
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return f, nil, ErrNotWAV
	}
	var sawFmt bool
	for {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			return f, nil, fmt.Errorf("wav: no data chunk")
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return f, nil, fmt.Errorf("wav: truncated chunk header")
		}
		switch string(id[:]) {
		case "fmt ":
			var chunk struct {
				AudioFormat   uint16
				Channels      uint16
				SampleRate    uint32
				ByteRate      uint32
				BlockAlign    uint16
				BitsPerSample uint16
			}
			if size < 16 {
				return f, nil, fmt.Errorf("wav: short fmt chunk")
			}
			if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
				return f, nil, fmt.Errorf("wav: %w", err)
			}
			if chunk.AudioFormat != 1 || chunk.BitsPerSample != 16 {
				return f, nil, fmt.Errorf("wav: only 16-bit PCM is supported")
			}
			f = Format{SampleRate: int(chunk.SampleRate), Channels: int(chunk.Channels), BitDepth: int(chunk.BitsPerSample)}
			sawFmt = true
			if _, err := r.Seek(int64(size-16)+padding(size), io.SeekCurrent); err != nil {
				return f, nil, err
			}
		case "data":
			if !sawFmt {
				return f, nil, fmt.Errorf("wav: data before fmt chunk")
			}
			if int64(size) > int64(r.Len()) {
				size = uint32(r.Len())
			}
			pcm := make([]byte, size)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return f, nil, fmt.Errorf("wav: %w", err)
			}
			return f, pcm, nil
		default:
			if _, err := r.Seek(int64(size)+padding(size), io.SeekCurrent); err != nil {
				return f, nil, err
			}
		}
	}
}

// padding is the pad byte RIFF places after an odd-sized chunk.
func padding(size uint32) int64 {
	return int64(size & 1)
}
