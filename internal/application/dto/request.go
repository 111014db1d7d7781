package dto

import (
	"errors"
	"strings"
)

// GetAssetsRequest represents the ids requested from /api/v1/assets
type GetAssetsRequest struct {
	// IDs es la lista de ids solicitados (ej: "BTC,ETH"), ya canonicalizados
	IDs []string `json:"ids"`
}

// NewGetAssetsRequest crea la request desde el query parameter ids.
// Sin parámetro se usan los ids trackeados. Los ids no trackeados se rechazan
// porque el cache nunca los va a tener.
func NewGetAssetsRequest(idsParam string, tracked []string, canonicalize func(string) string) (*GetAssetsRequest, error) {
	if strings.TrimSpace(idsParam) == "" {
		if len(tracked) == 0 {
			return nil, errors.New("no tracked ids configured")
		}
		return &GetAssetsRequest{IDs: append([]string(nil), tracked...)}, nil
	}

	trackedMap := make(map[string]bool, len(tracked))
	for _, id := range tracked {
		trackedMap[id] = true
	}

	seen := make(map[string]bool)
	var ids []string
	for _, id := range strings.Split(idsParam, ",") {
		id = canonicalize(id)
		if id == "" || seen[id] {
			continue
		}
		if !trackedMap[id] {
			return nil, errors.New("untracked id: " + id + " (tracked ids: " + strings.Join(tracked, ",") + ")")
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, errors.New("no valid ids provided")
	}

	return &GetAssetsRequest{IDs: ids}, nil
}
