package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

const (
	logoDir  = "logo/"
	audioDir = "audio/"
)

//go:embed logo/*.png
var logoFS embed.FS

//go:embed audio/*.wav
var audioFS embed.FS

var logoCache sync.Map

// Logo returns a Fyne resource for the given logo file.
func Logo(fileName string) (fyne.Resource, error) {
	return loadResource(logoFS, logoDir+fileName, &logoCache)
}

// MustLogo returns a Fyne resource or panics on error.
func MustLogo(fileName string) fyne.Resource {
	resource, err := Logo(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}

// Chime returns the raw WAV bytes for the given audio file.
func Chime(fileName string) ([]byte, error) {
	data, err := audioFS.ReadFile(audioDir + fileName)
	if err != nil {
		return nil, fmt.Errorf("load chime %s: %w", fileName, err)
	}
	return data, nil
}

// MustChime returns WAV bytes or panics on error.
func MustChime(fileName string) []byte {
	data, err := Chime(fileName)
	if err != nil {
		panic(err)
	}
	return data
}

func loadResource(fs embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
