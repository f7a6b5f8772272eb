package main

import (
	"context"
	"fmt"
	"io"

	"github.com/LucasBurriel/arrivederci-menu/client/internal/api"
	"github.com/LucasBurriel/arrivederci-menu/client/internal/session"
)

// probeOrigin - Origin, от имени которого проверяются CORS заголовки.
const probeOrigin = "http://localhost:5173"

// runCheck печатает диагностику: адрес API, токен в каждом хранилище,
// доступность /ping, CORS заголовки и состояние сессии на сервере.
// Возвращает false, если API недоступен.
func runCheck(ctx context.Context, out io.Writer, client api.Client, store *session.Store) bool {
	fmt.Fprintf(out, "API: %s\n", client.BaseURL())
	fmt.Fprintf(out, "Origen de sesión: %s\n", session.OriginKey(client.BaseURL()))

	fmt.Fprintln(out, "Almacenamiento:")
	for _, st := range store.Inspect() {
		status := "sin token"
		if st.HasToken {
			status = "token presente"
		}
		if st.Err != nil {
			status = "error: " + st.Err.Error()
		}
		fmt.Fprintf(out, "  %-8s %s\n", st.Name, status)
	}

	ok := true
	if err := client.Ping(ctx); err != nil {
		fmt.Fprintf(out, "Ping: ERROR (%v)\n", err)
		ok = false
	} else {
		fmt.Fprintln(out, "Ping: OK")
	}

	if probe, err := client.Probe(ctx, probeOrigin); err != nil {
		fmt.Fprintf(out, "CORS: ERROR (%v)\n", err)
	} else {
		fmt.Fprintf(out, "CORS: status=%d allow-origin=%q allow-credentials=%q allow-methods=%q\n",
			probe.StatusCode, probe.AllowOrigin, probe.AllowCredentials, probe.AllowMethods)
	}

	if _, hasToken := store.GetToken(); !hasToken {
		fmt.Fprintln(out, "Sesión: no iniciada")
		return ok
	}
	authenticated, err := client.CheckAuth(ctx)
	switch {
	case err != nil:
		fmt.Fprintf(out, "Sesión: ERROR (%v)\n", err)
	case authenticated:
		fmt.Fprintln(out, "Sesión: válida")
	default:
		fmt.Fprintln(out, "Sesión: inválida")
	}
	return ok
}
