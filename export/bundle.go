// Package export assembles and reads the standalone bundle document: a single
// self-contained JSON file embedding the serialized scene and every asset it
// references. The player host pairs a bundle with the shared simulation and
// render core, so the editor and the exported experience run the exact same
// loop.
package export

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/phanxgames/glimmer"
)

// FormatVersion identifies the bundle layout. Readers reject versions they do
// not know.
const FormatVersion = 1

// AssetKind distinguishes how an embedded asset is decoded on load.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetAudio AssetKind = "audio"
)

// Asset is one embedded file, base64-encoded.
type Asset struct {
	Kind AssetKind `json:"kind"`
	Data string    `json:"data"`
}

// Bundle is the exported document. Scene is kept as raw JSON so the bundle
// round-trips byte-for-byte even as the scene schema gains fields.
type Bundle struct {
	Version       int              `json:"version"`
	Title         string           `json:"title"`
	VirtualWidth  int              `json:"virtualWidth"`
	VirtualHeight int              `json:"virtualHeight"`
	Scene         json.RawMessage  `json:"scene"`
	Assets        map[string]Asset `json:"assets,omitempty"`
}

// Options configures bundle assembly.
type Options struct {
	Title         string
	VirtualWidth  int // defaults to 800
	VirtualHeight int // defaults to 600

	// ExtraAudio lists audio URLs to embed beyond what the scene references.
	// Script-triggered sounds are not statically discoverable, so the editor
	// passes its project asset list here.
	ExtraAudio []string

	// ReadAsset overrides asset loading, for tests and custom pipelines.
	// Defaults to reading local files and HTTP URLs.
	ReadAsset func(url string) ([]byte, error)
}

// Build assembles a bundle from a scene: the scene is serialized inline and
// every referenced sprite and tileset, plus the listed audio files, is
// fetched and embedded. An asset that cannot be read fails the export; a
// bundle with silently missing assets would defeat its self-contained
// purpose.
func Build(scene *glimmer.Scene, opts Options) (*Bundle, error) {
	sceneJSON, err := scene.Encode()
	if err != nil {
		return nil, fmt.Errorf("export: encode scene: %w", err)
	}

	b := &Bundle{
		Version:       FormatVersion,
		Title:         opts.Title,
		VirtualWidth:  opts.VirtualWidth,
		VirtualHeight: opts.VirtualHeight,
		Scene:         sceneJSON,
		Assets:        make(map[string]Asset),
	}
	if b.VirtualWidth <= 0 {
		b.VirtualWidth = 800
	}
	if b.VirtualHeight <= 0 {
		b.VirtualHeight = 600
	}
	if b.Title == "" {
		b.Title = "glimmer scene"
	}

	read := opts.ReadAsset
	if read == nil {
		read = readFile
	}

	for _, url := range imageURLs(scene) {
		if err := b.embed(url, AssetImage, read); err != nil {
			return nil, err
		}
	}
	for _, url := range opts.ExtraAudio {
		if err := b.embed(url, AssetAudio, read); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Bundle) embed(url string, kind AssetKind, read func(string) ([]byte, error)) error {
	if url == "" {
		return nil
	}
	if _, done := b.Assets[url]; done {
		return nil
	}
	data, err := read(url)
	if err != nil {
		return fmt.Errorf("export: asset %q: %w", url, err)
	}
	b.Assets[url] = Asset{Kind: kind, Data: base64.StdEncoding.EncodeToString(data)}
	return nil
}

// imageURLs collects every sprite and tileset URL the scene references, in
// first-reference order without duplicates.
func imageURLs(scene *glimmer.Scene) []string {
	var urls []string
	seen := make(map[string]struct{})
	add := func(url string) {
		if url == "" {
			return
		}
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}
	for _, e := range scene.Entities {
		if e.Render != nil {
			add(e.Render.Sprite)
		}
		if e.Tilemap != nil {
			add(e.Tilemap.Tileset)
		}
	}
	return urls
}

// Encode serializes the bundle document.
func (b *Bundle) Encode() ([]byte, error) {
	return json.Marshal(b)
}

// WriteFile writes the bundle document to path.
func (b *Bundle) WriteFile(path string) error {
	data, err := b.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Decode parses a bundle document and validates its version.
func Decode(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("export: decode bundle: %w", err)
	}
	if b.Version != FormatVersion {
		return nil, fmt.Errorf("export: unsupported bundle version %d", b.Version)
	}
	return b, nil
}

// DecodeScene parses the bundle's inline scene.
func (b *Bundle) DecodeScene() (*glimmer.Scene, error) {
	return glimmer.DecodeScene(b.Scene)
}

// Hydrate decodes every embedded asset into the cache, keyed by its original
// URL, so renderer and audio lookups resolve without any fetching.
func (b *Bundle) Hydrate(cache *glimmer.AssetCache) error {
	for url, asset := range b.Assets {
		data, err := base64.StdEncoding.DecodeString(asset.Data)
		if err != nil {
			return fmt.Errorf("export: asset %q: %w", url, err)
		}
		if err := cache.Put(url, data, asset.Kind == AssetImage); err != nil {
			return err
		}
	}
	return nil
}

func readFile(url string) ([]byte, error) {
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
