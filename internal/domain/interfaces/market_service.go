package interfaces

import (
	"context"
	"tbtc-market-service/internal/domain/entities"
)

// MarketService define los casos de uso del proxy de mercado tBTC
type MarketService interface {
	// FetchMarket invoca el proceso upstream exactamente una vez y devuelve
	// su documento JSON sin modificar, o un *entities.UpstreamError
	FetchMarket(ctx context.Context) (*entities.MarketDocument, error)

	// LastSnapshot retorna el último documento obtenido con éxito.
	// Nunca invoca el proceso upstream.
	LastSnapshot(ctx context.Context) (*entities.MarketSnapshot, error)
}
