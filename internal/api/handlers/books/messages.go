package books

import (
	"errors"
	"net/http"

	"github.com/5w1tchy/bookshelf-api/internal/api/apperr"
	"github.com/5w1tchy/bookshelf-api/internal/api/httpx"
	"github.com/5w1tchy/bookshelf-api/internal/registry"
)

const (
	msgCreated = "Buku berhasil ditambahkan"
	msgUpdated = "Buku berhasil diperbarui"
	msgDeleted = "Buku berhasil dihapus"

	msgInsertFailed     = "Buku gagal ditambahkan"
	msgNotFound         = "Buku tidak ditemukan"
	msgNameRequired     = "Gagal mendapatkan buku. Mohon isi nama buku"
	msgUpdateNotFound   = "Gagal memperbarui buku. Id tidak ditemukan"
	msgDeleteNotFound   = "Buku gagal dihapus. Id tidak ditemukan"
	prefixInsertInvalid = "Gagal menambahkan buku. "
	prefixUpdateInvalid = "Gagal memperbarui buku. "
)

var reasonText = map[registry.Reason]string{
	registry.ReasonMissingPayload:           "Mohon isi data buku dengan benar",
	registry.ReasonMissingName:              "Mohon isi nama buku",
	registry.ReasonYearNotNumber:            "Tahun harus berupa angka",
	registry.ReasonPageCountNotNumber:       "Jumlah halaman harus berupa angka",
	registry.ReasonReadPageNotNumber:        "Halaman yang dibaca harus berupa angka",
	registry.ReasonNegativePages:            "Jumlah halaman tidak boleh negatif",
	registry.ReasonReadPageExceedsPageCount: "readPage tidak boleh lebih besar dari pageCount",
}

func validationMessage(op registry.Op, r registry.Reason) string {
	prefix := prefixInsertInvalid
	if op == registry.OpUpdate {
		prefix = prefixUpdateInvalid
	}
	text, ok := reasonText[r]
	if !ok {
		text = reasonText[registry.ReasonMissingPayload]
	}
	return prefix + text
}

// mapError translates registry errors. notFound is the operation-specific
// 404 message.
func mapError(err error, notFound string) error {
	var ve *registry.ValidationError
	switch {
	case errors.As(err, &ve):
		return apperr.New(http.StatusBadRequest, validationMessage(ve.Op, ve.Reason), err)
	case errors.Is(err, registry.ErrNotFound):
		return apperr.New(http.StatusNotFound, notFound, err)
	case errors.Is(err, registry.ErrNameRequired):
		return apperr.New(http.StatusBadRequest, msgNameRequired, err)
	case errors.Is(err, registry.ErrInsertFailed):
		return apperr.New(http.StatusInternalServerError, msgInsertFailed, err)
	default:
		return err
	}
}

// decodePayload reads a book payload. Malformed or empty bodies yield a nil
// payload so the registry reports them as a missing payload; oversized
// bodies are returned as errors.
func decodePayload(r *http.Request) (*registry.Payload, error) {
	var p *registry.Payload
	if err := httpx.DecodeJSON(r, &p); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, err
		}
		return nil, nil
	}
	return p, nil
}
