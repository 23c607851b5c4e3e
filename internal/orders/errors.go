package orders

import (
	"errors"
	"net/http"

	"biblio_back_end/internal/store"
)

// Taxonomie d'erreurs du cycle de vie. Les handlers traduisent via
// HTTPStatus, rien n'est avalé en silence.
var (
	ErrValidation   = errors.New("requête invalide")
	ErrNotFound     = errors.New("ressource introuvable")
	ErrForbidden    = errors.New("accès interdit")
	ErrConflict     = errors.New("conflit d'état")
	ErrPrecondition = errors.New("précondition non satisfaite")
	ErrUnauthorized = errors.New("authentification requise")
)

// HTTPStatus traduit une erreur du cycle de vie (ou du store) en code HTTP.
// Tout ce qui n'est pas reconnu est une défaillance du collaborateur : 500,
// l'appelant peut réessayer avec backoff.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, store.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound), errors.Is(err, store.ErrNoDocument):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrPrecondition):
		return http.StatusPreconditionFailed
	case errors.Is(err, store.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
