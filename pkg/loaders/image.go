package loaders

import (
	"fmt"
	"image"
	_ "image/gif"  // GIF decoder
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-animated-raytracer/pkg/material"
)

// maxConcurrentDecodes bounds parallel texture decoding
const maxConcurrentDecodes = 4

// LoadTexture decodes a PNG, JPEG, GIF, BMP, TIFF or WebP file into an 8-bit
// RGB texture
func LoadTexture(filename string) (*material.Texture, error) {
	path, err := homedir.Expand(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to expand texture path %s: %w", filename, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	// Decode image (auto-detects the format from the file header)
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", filename, err)
	}

	return TextureFromImage(img), nil
}

// TextureFromImage converts any image to an 8-bit RGB texture, dropping alpha
func TextureFromImage(img image.Image) *material.Texture {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	data := make([]byte, width*height*3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535]
			idx := (y*width + x) * 3
			data[idx] = uint8(r >> 8)
			data[idx+1] = uint8(g >> 8)
			data[idx+2] = uint8(b >> 8)
		}
	}

	return material.NewTexture(width, height, 3, data)
}

// textureSet holds the decoded textures of one scene keyed by their path as
// written in the scene file
type textureSet struct {
	byPath  map[string]*material.Texture
	ordered []*material.Texture
}

// loadSceneTextures decodes every distinct texture referenced by sf
// concurrently. Relative paths resolve against baseDir.
func loadSceneTextures(sf *SceneFile, baseDir string) (*textureSet, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(tc *TextureConfig) {
		if tc == nil || tc.Path == "" || seen[tc.Path] {
			return
		}
		seen[tc.Path] = true
		paths = append(paths, tc.Path)
	}

	add(sf.Environment)
	for _, sc := range sf.Spheres {
		add(sc.Texture)
	}
	for _, mc := range sf.Meshes {
		add(mc.Texture)
	}

	loaded := make([]*material.Texture, len(paths))
	var g errgroup.Group
	g.SetLimit(maxConcurrentDecodes)
	for i, p := range paths {
		g.Go(func() error {
			resolved := p
			if !filepath.IsAbs(resolved) && resolved[0] != '~' {
				resolved = filepath.Join(baseDir, resolved)
			}
			tex, err := LoadTexture(resolved)
			if err != nil {
				return fmt.Errorf("texture %q: %w", p, err)
			}
			loaded[i] = tex
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &textureSet{byPath: make(map[string]*material.Texture, len(paths)), ordered: loaded}
	for i, p := range paths {
		set.byPath[p] = loaded[i]
	}
	return set, nil
}
