package imports

import (
	"bytes"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// NoRowIndex marks a query without a row position.
const NoRowIndex = -1

var separators = regexp.MustCompile(`[-_\s]`)

// ImagePool maps lookup keys to image bytes. Keys keep insertion order so the
// fallback scan is deterministic; re-setting a key keeps its first position
// and replaces the bytes.
type ImagePool struct {
	keys   []string
	images map[string][]byte
}

func NewImagePool() *ImagePool {
	return &ImagePool{images: make(map[string][]byte)}
}

func (p *ImagePool) Set(key string, data []byte) {
	if key == "" {
		return
	}
	if _, ok := p.images[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.images[key] = data
}

func (p *ImagePool) Get(key string) ([]byte, bool) {
	data, ok := p.images[key]
	return data, ok
}

// Len reports the number of keys, not distinct images.
func (p *ImagePool) Len() int {
	return len(p.keys)
}

// AddArchiveEntry registers one archive file under its full name, its base
// name without extension, separator-free variants of that base and its
// 1-based and 0-based position in the archive.
func (p *ImagePool) AddArchiveEntry(fileName string, position int, data []byte) {
	full := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	base := strings.TrimSuffix(full, path.Ext(full))
	stripped := stripSeparators(base)

	p.Set(full, data)
	p.Set(base, data)
	p.Set(stripped, data)
	p.Set(strings.ToLower(stripped), data)
	p.Set(strconv.Itoa(position+1), data)
	p.Set(strconv.Itoa(position), data)
}

type ImageQuery struct {
	ImageRef string
	SKU      string
	Name     string
	RowIndex int
}

// Find tries the candidate keys derived from the query in order, then scans
// the pool for a key containing the SKU or the start of the name.
func (p *ImagePool) Find(q ImageQuery) ([]byte, bool) {
	if p == nil || len(p.keys) == 0 {
		return nil, false
	}
	for _, key := range candidateKeys(q) {
		if data, ok := p.images[key]; ok {
			return data, true
		}
	}

	sku := strings.ToLower(stripSeparators(q.SKU))
	namePrefix := firstRunes(q.Name, 10)
	strippedPrefix := stripSeparators(namePrefix)
	for _, key := range p.keys {
		k := strings.ToLower(stripSeparators(key))
		if sku != "" && strings.Contains(k, sku) {
			return p.images[key], true
		}
		if namePrefix != "" && (strings.Contains(key, namePrefix) || strings.Contains(k, strippedPrefix)) {
			return p.images[key], true
		}
	}
	return nil, false
}

func candidateKeys(q ImageQuery) []string {
	var keys []string
	add := func(k string) {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}

	if ref := strings.TrimSpace(q.ImageRef); ref != "" {
		base := strings.TrimSuffix(path.Base(ref), path.Ext(ref))
		add(ref)
		add(base)
		add(stripSeparators(base))
		add(strings.ToLower(stripSeparators(base)))
	}
	if sku := strings.TrimSpace(q.SKU); sku != "" {
		add(sku)
		add(stripSeparators(sku))
		add(strings.ToLower(stripSeparators(sku)))
	}
	if name := strings.TrimSpace(q.Name); name != "" {
		add(firstRunes(name, 30))
		add(stripSeparators(firstRunes(name, 15)))
		add(firstRunes(stripSeparators(name), 20))
	}
	if q.RowIndex >= 0 {
		add(strconv.Itoa(q.RowIndex + 1))
		add(strconv.Itoa(q.RowIndex))
		add(strconv.Itoa(q.RowIndex + 2))
	}
	return keys
}

func stripSeparators(s string) string {
	return separators.ReplaceAllString(s, "")
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

var pngMagic = []byte{0x89, 0x50}

// SniffImage picks the upload extension and content type from the leading
// bytes. Anything that is not PNG is stored as JPEG.
func SniffImage(data []byte) (ext, contentType string) {
	if bytes.HasPrefix(data, pngMagic) {
		return "png", "image/png"
	}
	return "jpg", "image/jpeg"
}
