package sound

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spf13/afero"
)

func makeWAV(t *testing.T, rate, channels int, pcm []byte, extra bool) []byte {
	t.Helper()
	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(0))
	b.WriteString("WAVE")
	if extra {
		b.WriteString("LIST")
		binary.Write(&b, binary.LittleEndian, uint32(4))
		b.WriteString("INFO")
	}
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1))
	binary.Write(&b, binary.LittleEndian, uint16(channels))
	binary.Write(&b, binary.LittleEndian, uint32(rate))
	binary.Write(&b, binary.LittleEndian, uint32(rate*channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(channels*2))
	binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, uint32(len(pcm)))
	b.Write(pcm)
	return b.Bytes()
}

func TestParseWAV(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	f, got, err := ParseWAV(makeWAV(t, 44100, 2, pcm, true))
	if err != nil {
		t.Fatal(err)
	}
	if f.SampleRate != 44100 || f.Channels != 2 || f.BitDepth != 16 {
		t.Errorf("format = %+v", f)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("pcm = %v, want %v", got, pcm)
	}
}

func TestParseWAV_OddChunkPadding(t *testing.T) {
	pcm := []byte{9, 8, 7, 6}
	plain := makeWAV(t, 22050, 1, pcm, false)

	var b bytes.Buffer
	b.Write(plain[:12])
	b.WriteString("LIST")
	binary.Write(&b, binary.LittleEndian, uint32(5))
	b.WriteString("INFOx")
	b.WriteByte(0)
	b.Write(plain[12:])

	f, got, err := ParseWAV(b.Bytes())
	if err != nil {
		t.Fatalf("odd-sized chunk: %v", err)
	}
	if f.SampleRate != 22050 || f.Channels != 1 {
		t.Errorf("format = %+v", f)
	}
	if !bytes.Equal(got, pcm) {
		t.Errorf("pcm = %v, want %v", got, pcm)
	}
}

func TestParseWAV_Rejects(t *testing.T) {
	tests := map[string][]byte{
		"empty":    nil,
		"not riff": []byte("OggS0000WAVE"),
		"no data":  []byte("RIFF\x00\x00\x00\x00WAVE"),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := ParseWAV(data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestResolver(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/sounds/notification.wav", []byte("fallback"), 0o644)
	r := Resolver{Fs: fs, Dir: "/sounds", Preferred: "alarm.wav", Fallback: "notification.wav"}

	data, path, err := r.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "fallback" || path != "/sounds/notification.wav" {
		t.Errorf("got %q from %s", data, path)
	}

	_ = afero.WriteFile(fs, "/sounds/alarm.wav", []byte("preferred"), 0o644)
	data, _, err = r.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "preferred" {
		t.Errorf("got %q, want preferred sound", data)
	}
}

func TestResolver_NothingAvailable(t *testing.T) {
	r := Resolver{Fs: afero.NewMemMapFs(), Dir: "/x", Preferred: "a.wav", Fallback: "b.wav"}
	if _, _, err := r.Resolve(); !errors.Is(err, ErrNoSound) {
		t.Errorf("err = %v, want ErrNoSound", err)
	}
}

func TestLoopReader_Wraps(t *testing.T) {
	l := &loopReader{pcm: []byte{1, 2, 3}}
	buf := make([]byte, 7)
	n, err := l.Read(buf)
	if err != nil || n != 7 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	want := []byte{1, 2, 3, 1, 2, 3, 1}
	if !bytes.Equal(buf, want) {
		t.Errorf("buf = %v, want %v", buf, want)
	}
	n, _ = l.Read(buf[:2])
	if n != 2 || buf[0] != 2 || buf[1] != 3 {
		t.Errorf("continuation = %v", buf[:2])
	}
}
