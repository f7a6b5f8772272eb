package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
)

var (
	// ErrSuperseded - загрузку заменила более новая, ее результат отброшен.
	ErrSuperseded = errors.New("загрузка каталога заменена более новой")
	// ErrTimeout - загрузка не уложилась в отведенное время.
	ErrTimeout = errors.New("истекло время загрузки каталога")
)

// Kind - категория ошибки загрузки для пользователя.
type Kind int

const (
	KindNone Kind = iota
	KindTimeout
	KindNotFound
	KindUnauthorized
	KindServer
	KindGeneric
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindTimeout:
		return "timeout"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server"
	default:
		return "generic"
	}
}

// Сообщения для баннера ошибки.
var messages = map[Kind]string{
	KindTimeout:      "El servidor tardó demasiado en responder. Intentá nuevamente.",
	KindNotFound:     "No se encontraron los datos del menú.",
	KindUnauthorized: "No tenés permiso para ver estos datos. Iniciá sesión nuevamente.",
	KindServer:       "Error del servidor. Por favor, intente nuevamente más tarde.",
	KindGeneric:      "Error al cargar el menú. Por favor, intente nuevamente más tarde.",
}

// Classify определяет категорию ошибки.
func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, api.ErrNotFound):
		return KindNotFound
	case errors.Is(err, api.ErrAuthorization):
		return KindUnauthorized
	case errors.As(err, &statusErr) && statusErr.StatusCode >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindGeneric
	}
}

// Describe возвращает сообщение для пользователя. Для nil - пустая строка.
func Describe(err error) string {
	return messages[Classify(err)]
}
