package sound

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// Playback is a running loop.
type Playback interface {
	Stop()
}

// Player starts looping playback of a WAV file.
type Player interface {
	Play(wav []byte) (Playback, error)
}

// oto allows a single context per process.
var (
	ctxMu     sync.Mutex
	ctx       *oto.Context
	ctxFormat Format
)

func audioContext(f Format) (*oto.Context, error) {
	ctxMu.Lock()
	defer ctxMu.Unlock()
	if ctx != nil {
		if f.SampleRate != ctxFormat.SampleRate || f.Channels != ctxFormat.Channels {
			return nil, fmt.Errorf("audio context is open at %d Hz/%d ch, sound is %d Hz/%d ch",
				ctxFormat.SampleRate, ctxFormat.Channels, f.SampleRate, f.Channels)
		}
		return ctx, nil
	}
	c, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   f.SampleRate,
		ChannelCount: f.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio context: %w", err)
	}
	<-ready
	ctx, ctxFormat = c, f
	return ctx, nil
}

// OtoPlayer plays through the system audio device.
type OtoPlayer struct{}

func (OtoPlayer) Play(wav []byte) (Playback, error) {
	f, pcm, err := ParseWAV(wav)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("wav: empty data chunk")
	}
	c, err := audioContext(f)
	if err != nil {
		return nil, err
	}
	p := c.NewPlayer(&loopReader{pcm: pcm})
	p.SetVolume(1.0)
	p.Play()
	return &otoPlayback{p: p}, nil
}

type otoPlayback struct {
	once sync.Once
	p    *oto.Player
}

func (o *otoPlayback) Stop() {
	o.once.Do(func() {
		o.p.Pause()
		_ = o.p.Close()
	})
}

// loopReader replays pcm forever.
type loopReader struct {
	pcm []byte
	off int
}

func (l *loopReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		c := copy(b[n:], l.pcm[l.off:])
		n += c
		l.off = (l.off + c) % len(l.pcm)
	}
	return n, nil
}
