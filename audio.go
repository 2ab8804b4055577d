package glimmer

import (
	"bytes"
	"io"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// DefaultSampleRate is the audio context sample rate used by the hosts.
const DefaultSampleRate = 48000

// AudioPlayer decodes and plays sounds by URL through a shared ebiten audio
// context. Raw bytes come from the session's AssetCache, so playback follows
// the same eventually consistent contract as sprites: a sound that has not
// finished loading is silently skipped this call and will play once cached.
// Decoded PCM is cached per URL; each Play spawns an independent player so
// overlapping effects mix.
type AudioPlayer struct {
	ctx    *audio.Context
	cache  *AssetCache
	logger *Logger
	pcm    map[string][]byte
	failed map[string]bool
}

// NewAudioPlayer creates the playback facility. ctx may be nil for headless
// use (tests, tooling); Play then only exercises the decode path.
func NewAudioPlayer(ctx *audio.Context, cache *AssetCache, logger *Logger) *AudioPlayer {
	return &AudioPlayer{
		ctx:    ctx,
		cache:  cache,
		logger: logger,
		pcm:    make(map[string][]byte),
		failed: make(map[string]bool),
	}
}

// Play starts playback of the sound at url, if its bytes are cached and
// decodable. Decode failures are logged once per URL.
func (a *AudioPlayer) Play(url string) {
	if a.failed[url] {
		return
	}
	pcm, ok := a.pcm[url]
	if !ok {
		data := a.cache.Bytes(url)
		if data == nil {
			return // still loading, or fetch failed (logged by the cache)
		}
		var err error
		pcm, err = decodePCM(url, data)
		if err != nil {
			a.failed[url] = true
			if a.logger != nil {
				a.logger.Warn("audio %q failed to decode: %v", url, err)
			}
			return
		}
		a.pcm[url] = pcm
	}
	if a.ctx == nil {
		return
	}
	player := a.ctx.NewPlayerFromBytes(pcm)
	player.Play()
}

// decodePCM decodes wav, ogg, or mp3 data to raw PCM at DefaultSampleRate,
// picking the decoder from the URL extension (wav when unrecognized).
func decodePCM(url string, data []byte) ([]byte, error) {
	r := bytes.NewReader(data)
	var stream io.Reader
	var err error
	switch {
	case strings.HasSuffix(strings.ToLower(url), ".ogg"):
		stream, err = vorbis.DecodeWithSampleRate(DefaultSampleRate, r)
	case strings.HasSuffix(strings.ToLower(url), ".mp3"):
		stream, err = mp3.DecodeWithSampleRate(DefaultSampleRate, r)
	default:
		stream, err = wav.DecodeWithSampleRate(DefaultSampleRate, r)
	}
	if err != nil {
		return nil, err
	}
	return io.ReadAll(stream)
}
