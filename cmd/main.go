package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/baxromumarov/oneshot"
)

// lookup simulates a legacy callback-style API: fire a request, hear back
// once through the trailing callback.
func lookup(host string, done oneshot.Callback) {
	go func() {
		time.Sleep(50 * time.Millisecond)
		done("93.184.216.34", 42*time.Millisecond)
	}()
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	resolve := oneshot.BindWith(
		lookup,
		func(results ...any) (string, error) {
			return results[0].(string), nil
		},
		oneshot.WithOnEvent[string](func(e oneshot.Event) {
			evt := log.Debug().Stringer("event", e.Kind)
			if e.Err != nil {
				evt = evt.Err(e.Err)
			}
			evt.Msg("subscription event")
		}),
	)

	addr, err := oneshot.Await[string](
		context.Background(),
		oneshot.Timeout[string](resolve.Source("example.com"), time.Second),
	)
	if err != nil {
		log.Error().Err(err).Msg("lookup failed")
		return
	}
	log.Info().Str("addr", addr).Msg("resolved")

	// Many consumers, one invocation.
	shared := oneshot.Share[string](resolve.Source("example.com"), oneshot.WithRetain())
	for i := 0; i < 3; i++ {
		v, err := oneshot.Await[string](context.Background(), shared)
		if err != nil {
			log.Error().Err(err).Int("consumer", i).Msg("shared lookup failed")
			continue
		}
		log.Info().Int("consumer", i).Str("addr", v).Msg("shared result")
	}
	log.Info().Int64("invocations", resolve.Invocations()).Msg("done")
}
