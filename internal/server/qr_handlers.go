package server

import (
	"net/http"

	"github.com/skip2/go-qrcode"
)

// handleShareQR renders a PNG QR code of the share link, for printing next
// to the works. Unknown artists get the site link.
func (ps *PreviewServer) handleShareQR(w http.ResponseWriter, r *http.Request) {
	size, verr := validateQRSize(r.URL.Query().Get("size"))
	if verr != nil {
		ps.respondWithValidationError(w, r, []ValidationError{*verr})
		return
	}

	link := ps.site.BaseURL
	if artist, ok := ps.site.Artist(r.URL.Query().Get("artist")); ok {
		link = ps.site.ArtistURL(artist.ID)
	}

	png, err := qrcode.Encode(link, qrcode.Medium, size)
	if err != nil {
		ps.respondWithErrorPage(w, r, http.StatusInternalServerError, "QR code could not be generated.", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", ps.config.CacheControl())
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(png)
	}
}
