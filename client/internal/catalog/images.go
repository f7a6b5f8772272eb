package catalog

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/LucasBurriel/arrivederci-menu/models"
)

// Placeholder - изображение-заглушка для продуктов без доступной картинки.
const Placeholder = "/placeholder-food.jpg"

// defaultProbeLimit - сколько изображений проверяется одновременно.
const defaultProbeLimit = 4

// ResolveImages проверяет imagen_url каждого продукта запросом HEAD и
// возвращает итоговые адреса по ID продукта. Недоступная картинка
// заменяется заглушкой только для своего продукта.
func ResolveImages(ctx context.Context, client *http.Client, products []models.Product, limit int) map[int64]string {
	if client == nil {
		client = http.DefaultClient
	}
	if limit <= 0 {
		limit = defaultProbeLimit
	}

	resolved := make([]string, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range products {
		g.Go(func() error {
			if probeImage(gctx, client, p.ImagenURL) {
				resolved[i] = p.ImagenURL
			} else {
				resolved[i] = Placeholder
			}
			// Ошибка одной картинки не должна отменять остальные
			return nil
		})
	}
	_ = g.Wait()

	result := make(map[int64]string, len(products))
	for i, p := range products {
		result[p.ID] = resolved[i]
	}
	return result
}

func probeImage(ctx context.Context, client *http.Client, imageURL string) bool {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" || !(strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://")) {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return false
	}
	contentType := resp.Header.Get("Content-Type")
	return contentType == "" || strings.HasPrefix(contentType, "image/")
}
