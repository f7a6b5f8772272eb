package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// Тексты ответов, которые видит клиент.
const (
	msgInternalError = "Error interno del servidor"
	msgBadRequest    = "Formato de solicitud inválido"
)

// messageResponse - подтверждение операции без тела объекта.
type messageResponse struct {
	Mensaje string `json:"mensaje"`
}

// writeJSON кодирует v в тело ответа с заданным статусом.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Клиент уже получил статус, сложно что-то изменить
		log.Printf("[Handlers] Ошибка кодирования ответа: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.ErrorResponse{Error: message})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Mensaje: message})
}

// decodeJSON читает тело запроса. При ошибке ответ 400 уже записан.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		log.Printf("[Handlers] Ошибка декодирования запроса %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusBadRequest, msgBadRequest)
		return false
	}
	return true
}
