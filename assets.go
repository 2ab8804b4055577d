package glimmer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
)

// assetState tracks the lifecycle of one cache entry.
type assetState uint8

const (
	assetPending assetState = iota
	assetReady
	assetFailed
)

type assetEntry struct {
	state assetState
	img   image.Image // decoded pixels for image assets
	data  []byte      // raw bytes for audio assets
}

// AssetCache is a URL-keyed cache of images and audio data populated by
// fire-and-forget background fetches. Lookups never block: a caller asking
// for an asset that is still loading (or failed) gets nothing back and is
// expected to simply skip that draw or playback. Failures are logged once.
//
// The cache is owned by the component that created it (the Renderer for
// images, the audio facility for sounds) and lives for one scene session.
type AssetCache struct {
	mu      sync.Mutex
	entries map[string]*assetEntry
	logger  *Logger
}

// NewAssetCache creates an empty cache reporting faults to the given logger.
func NewAssetCache(logger *Logger) *AssetCache {
	return &AssetCache{
		entries: make(map[string]*assetEntry),
		logger:  logger,
	}
}

// Image returns the decoded image for url, starting a background fetch on
// first request. Returns nil until the fetch and decode have completed.
func (c *AssetCache) Image(url string) image.Image {
	img, _ := c.resolve(url, true)
	return img
}

// Bytes returns the raw bytes for url (used for audio), starting a background
// fetch on first request. Returns nil until the fetch has completed.
func (c *AssetCache) Bytes(url string) []byte {
	_, data := c.resolve(url, false)
	return data
}

// Preload starts fetches for the given image URLs without waiting.
func (c *AssetCache) Preload(urls ...string) {
	for _, url := range urls {
		c.resolve(url, true)
	}
}

// Put inserts an already-loaded asset, bypassing the fetch path. Used by the
// standalone player for assets embedded in the bundle document.
func (c *AssetCache) Put(url string, data []byte, decodeImage bool) error {
	e := &assetEntry{state: assetReady, data: data}
	if decodeImage {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("glimmer: decode embedded asset %q: %w", url, err)
		}
		e.img = img
	}
	c.mu.Lock()
	c.entries[url] = e
	c.mu.Unlock()
	return nil
}

// resolve looks up url, starting a background fetch on a miss, and returns
// the entry's contents if it is ready. Entry state is only touched under the
// lock; the fetch goroutine publishes its result the same way.
func (c *AssetCache) resolve(url string, decodeImage bool) (image.Image, []byte) {
	if url == "" {
		return nil, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[url]
	if !ok {
		e = &assetEntry{state: assetPending}
		c.entries[url] = e
		go c.fetch(url, e, decodeImage)
	}
	if e.state != assetReady {
		return nil, nil
	}
	return e.img, e.data
}

// fetch loads and decodes one asset off the frame loop. On failure the entry
// is marked failed and left in place so the fetch is not retried every frame.
func (c *AssetCache) fetch(url string, e *assetEntry, decodeImage bool) {
	data, err := readAsset(url)
	var img image.Image
	if err == nil && decodeImage {
		img, _, err = image.Decode(bytes.NewReader(data))
	}

	c.mu.Lock()
	if err != nil {
		e.state = assetFailed
	} else {
		e.img = img
		e.data = data
		e.state = assetReady
	}
	c.mu.Unlock()

	if err != nil && c.logger != nil {
		c.logger.Warn("asset %q failed to load: %v", url, err)
	}
}

func readAsset(url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		resp, err := http.Get(url)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(url)
}
