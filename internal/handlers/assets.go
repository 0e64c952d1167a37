package handlers

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"wfquiz/internal/catalog"
)

// AssetHandler serves component images. Only names in the catalog resolve.
type AssetHandler struct {
	catalog *catalog.Catalog
	images  fs.FS
}

func NewAssetHandler(cat *catalog.Catalog, images fs.FS) *AssetHandler {
	return &AssetHandler{catalog: cat, images: images}
}

func (h *AssetHandler) RegisterRoutes(r chi.Router) {
	r.Get(catalog.DefaultImagePrefix+"/{file}", h.image)
}

func (h *AssetHandler) image(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	name, ok := strings.CutSuffix(file, ".png")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, ok := h.catalog.Item(name); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFileFS(w, r, h.images, file)
}
