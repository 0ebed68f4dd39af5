package loader

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/scrollscene/common"
	"github.com/h2non/filetype"
	"github.com/qmuntal/gltf"
)

// gltfMaterialExtractor decodes the base colour texture of a material.
type gltfMaterialExtractor struct {
	doc *gltf.Document
	dir string
}

func newGLTFMaterialExtractor(doc *gltf.Document, dir string) *gltfMaterialExtractor {
	return &gltfMaterialExtractor{doc: doc, dir: dir}
}

// BaseColor returns the decoded base colour texture of material idx, or nil when
// the material has none.
func (e *gltfMaterialExtractor) BaseColor(idx int) (*common.TextureStagingData, error) {
	if idx < 0 || idx >= len(e.doc.Materials) {
		return nil, nil
	}
	pbr := e.doc.Materials[idx].PBRMetallicRoughness
	if pbr == nil || pbr.BaseColorTexture == nil {
		return nil, nil
	}

	texIdx := pbr.BaseColorTexture.Index
	if texIdx < 0 || texIdx >= len(e.doc.Textures) {
		return nil, fmt.Errorf("loader: material %d references missing texture %d", idx, texIdx)
	}
	src := e.doc.Textures[texIdx].Source
	if src == nil || *src >= len(e.doc.Images) {
		return nil, nil
	}

	data, err := e.imageBytes(e.doc.Images[*src])
	if err != nil {
		return nil, fmt.Errorf("loader: texture %d: %w", texIdx, err)
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("loader: texture %d is not an image", texIdx)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("loader: decode texture %d: %w", texIdx, err)
	}

	tex := common.NewTextureStagingData(img, 1)
	return &tex, nil
}

func (e *gltfMaterialExtractor) imageBytes(img *gltf.Image) ([]byte, error) {
	if img.BufferView != nil {
		bvIdx := *img.BufferView
		if bvIdx >= len(e.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", bvIdx)
		}
		bv := e.doc.BufferViews[bvIdx]
		if bv.Buffer >= len(e.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		buf := e.doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf) {
			return nil, fmt.Errorf("buffer view %d exceeds buffer length", bvIdx)
		}
		return buf[bv.ByteOffset:end], nil
	}

	if img.IsEmbeddedResource() {
		return img.MarshalData()
	}
	if img.URI == "" {
		return nil, fmt.Errorf("image has neither a buffer view nor a URI")
	}
	return os.ReadFile(filepath.Join(e.dir, filepath.FromSlash(img.URI)))
}
