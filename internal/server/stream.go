package server

import (
	"context"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"coinfolio/internal/clients/coingecko"
)

const (
	defaultStreamInterval = 15 * time.Second
	minStreamInterval     = 5 * time.Second
	streamWriteTimeout    = 10 * time.Second
)

// priceUpdate is one websocket frame with the current quotes.
type priceUpdate struct {
	Time   time.Time                       `json:"time"`
	Quotes map[string]*coingecko.SpotQuote `json:"quotes"`
	Errors map[string]string               `json:"errors,omitempty"`
}

// handlePriceStream streams spot quotes over a websocket.
// GET /api/prices/stream?assets=bitcoin,ethereum&interval=15
func (s *Server) handlePriceStream(w http.ResponseWriter, r *http.Request) {
	assets := splitList(r.URL.Query().Get("assets"))
	if len(assets) == 0 {
		s.writeError(w, http.StatusBadRequest, "assets query parameter is required")
		return
	}

	interval := time.Duration(queryInt(r, "interval", int(defaultStreamInterval.Seconds()))) * time.Second
	if interval < minStreamInterval {
		interval = minStreamInterval
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	log := s.log.With().Strs("assets", assets).Logger()
	log.Info().Dur("interval", interval).Msg("Price stream opened")

	ctx := r.Context()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// First update goes out immediately, then one per tick.
	for {
		update := priceUpdate{
			Time:   time.Now().UTC(),
			Quotes: make(map[string]*coingecko.SpotQuote, len(assets)),
		}
		for _, asset := range assets {
			quote, err := s.market.CurrentPrice(ctx, asset)
			if err != nil {
				if update.Errors == nil {
					update.Errors = make(map[string]string)
				}
				update.Errors[asset] = err.Error()
				continue
			}
			update.Quotes[asset] = quote
		}

		writeCtx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
		err := wsjson.Write(writeCtx, conn, update)
		cancel()
		if err != nil {
			log.Debug().Err(err).Msg("Price stream closed")
			return
		}

		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "server shutting down")
			return
		case <-ticker.C:
		}
	}
}
